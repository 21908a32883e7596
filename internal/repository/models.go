package repository

import (
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
)

// DistributionModel is the persistence model for the distributions table.
type DistributionModel struct {
	ID              string                    `gorm:"type:uuid;primaryKey"`
	Name            string                    `gorm:"type:varchar(255);not null"`
	FileName        string                    `gorm:"type:varchar(255)"`
	TotalItems      int                       `gorm:"not null"`
	CreatedBy       string                    `gorm:"type:varchar(255)"`
	Status          domain.DistributionStatus `gorm:"type:varchar(20);not null"`
	ProcessingError *string                   `gorm:"type:text"`
	AgentCount      *int
	ItemsPerAgent   *int
	RemainderItems  *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (DistributionModel) TableName() string {
	return "distributions"
}

// TaskModel is the persistence model for the tasks table.
type TaskModel struct {
	ID             string            `gorm:"type:uuid;primaryKey"`
	DistributionID string            `gorm:"type:uuid;not null"`
	AgentID        string            `gorm:"type:uuid;not null"`
	SubjectName    string            `gorm:"type:varchar(100);not null"`
	Contact        string            `gorm:"type:varchar(50)"`
	Note           string            `gorm:"type:varchar(1000)"`
	Status         domain.TaskStatus `gorm:"type:varchar(20);not null"`
	AssignedAt     time.Time         `gorm:"not null"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (TaskModel) TableName() string {
	return "tasks"
}

// AgentModel is the persistence model for the agents table.
type AgentModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:varchar(255);not null"`
	Email      string    `gorm:"type:varchar(255);not null"`
	Phone      string    `gorm:"type:varchar(50);not null"`
	Active     bool      `gorm:"not null;default:true"`
	EnrolledAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (AgentModel) TableName() string {
	return "agents"
}

func distributionModelFromDomain(d *domain.Distribution) *DistributionModel {
	if d == nil {
		return nil
	}

	return &DistributionModel{
		ID:              d.ID,
		Name:            d.Name,
		FileName:        d.FileName,
		TotalItems:      d.TotalItems,
		CreatedBy:       d.CreatedBy,
		Status:          d.Status,
		ProcessingError: d.ProcessingError,
		AgentCount:      d.AgentCount,
		ItemsPerAgent:   d.ItemsPerAgent,
		RemainderItems:  d.RemainderItems,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func distributionModelToDomain(m *DistributionModel) *domain.Distribution {
	if m == nil {
		return nil
	}

	return &domain.Distribution{
		ID:              m.ID,
		Name:            m.Name,
		FileName:        m.FileName,
		TotalItems:      m.TotalItems,
		CreatedBy:       m.CreatedBy,
		Status:          m.Status,
		ProcessingError: m.ProcessingError,
		AgentCount:      m.AgentCount,
		ItemsPerAgent:   m.ItemsPerAgent,
		RemainderItems:  m.RemainderItems,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func taskModelFromDomain(t *domain.Task) *TaskModel {
	if t == nil {
		return nil
	}

	return &TaskModel{
		ID:             t.ID,
		DistributionID: t.DistributionID,
		AgentID:        t.AgentID,
		SubjectName:    t.SubjectName,
		Contact:        t.Contact,
		Note:           t.Note,
		Status:         t.Status,
		AssignedAt:     t.AssignedAt,
		StartedAt:      t.StartedAt,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func taskModelToDomain(m *TaskModel) *domain.Task {
	if m == nil {
		return nil
	}

	return &domain.Task{
		ID:             m.ID,
		DistributionID: m.DistributionID,
		AgentID:        m.AgentID,
		SubjectName:    m.SubjectName,
		Contact:        m.Contact,
		Note:           m.Note,
		Status:         m.Status,
		AssignedAt:     m.AssignedAt,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func agentModelFromDomain(a *domain.Agent) *AgentModel {
	if a == nil {
		return nil
	}

	return &AgentModel{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Phone:      a.Phone,
		Active:     a.Active,
		EnrolledAt: a.EnrolledAt,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func agentModelToDomain(m *AgentModel) *domain.Agent {
	if m == nil {
		return nil
	}

	return &domain.Agent{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Active:     m.Active,
		EnrolledAt: m.EnrolledAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
