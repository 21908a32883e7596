package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/candemiralp/leadflow/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&AgentModel{}, &DistributionModel{}, &TaskModel{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_agents_email ON agents (email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_agents_phone ON agents (phone)`,
	}
	for _, sql := range indexes {
		if err := db.Exec(sql).Error; err != nil {
			t.Fatalf("failed to create index: %v", err)
		}
	}

	return db
}

func seedAgent(t *testing.T, repo *GormAgentRepo, n int) *domain.Agent {
	t.Helper()

	agent := &domain.Agent{
		ID:         fmt.Sprintf("agent-%d", n),
		Name:       fmt.Sprintf("Agent %d", n),
		Email:      fmt.Sprintf("agent%d@leadflow.dev", n),
		Phone:      fmt.Sprintf("+9055500000%02d", n),
		Active:     true,
		EnrolledAt: time.Date(2025, 1, n, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), agent); err != nil {
		t.Fatalf("failed to seed agent: %v", err)
	}
	return agent
}

func seedDistribution(t *testing.T, repo *GormDistributionRepo, id string, status domain.DistributionStatus) *domain.Distribution {
	t.Helper()

	dist := &domain.Distribution{
		ID:         id,
		Name:       "August Leads",
		FileName:   "leads.csv",
		TotalItems: 13,
		CreatedBy:  "ops",
		Status:     status,
	}
	if err := repo.Create(context.Background(), dist); err != nil {
		t.Fatalf("failed to seed distribution: %v", err)
	}
	return dist
}

func TestGormDistributionRepoCreateAndGet(t *testing.T) {
	t.Parallel()

	repo := NewGormDistributionRepo(setupTestDB(t))
	seedDistribution(t, repo, "dist-1", domain.DistributionStatusProcessing)

	got, err := repo.GetByID(context.Background(), "dist-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "August Leads" || got.TotalItems != 13 {
		t.Fatalf("GetByID() = %+v, want seeded distribution", got)
	}
	if got.Status != domain.DistributionStatusProcessing {
		t.Fatalf("status = %s, want PROCESSING", got.Status)
	}
}

func TestGormDistributionRepoGetByIDNotFound(t *testing.T) {
	t.Parallel()

	repo := NewGormDistributionRepo(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestGormDistributionRepoComplete(t *testing.T) {
	t.Parallel()

	repo := NewGormDistributionRepo(setupTestDB(t))
	seedDistribution(t, repo, "dist-1", domain.DistributionStatusProcessing)

	sum := domain.Summary{AgentCount: 5, ItemsPerAgent: 2, RemainderItems: 3}
	if err := repo.Complete(context.Background(), "dist-1", sum); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), "dist-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != domain.DistributionStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", got.Status)
	}
	if got.AgentCount == nil || *got.AgentCount != 5 {
		t.Fatalf("agent count = %v, want 5", got.AgentCount)
	}
	if got.ItemsPerAgent == nil || *got.ItemsPerAgent != 2 {
		t.Fatalf("items per agent = %v, want 2", got.ItemsPerAgent)
	}
	if got.RemainderItems == nil || *got.RemainderItems != 3 {
		t.Fatalf("remainder = %v, want 3", got.RemainderItems)
	}
}

func TestGormDistributionRepoCompleteTwiceConflicts(t *testing.T) {
	t.Parallel()

	repo := NewGormDistributionRepo(setupTestDB(t))
	seedDistribution(t, repo, "dist-1", domain.DistributionStatusProcessing)

	sum := domain.Summary{AgentCount: 5, ItemsPerAgent: 2, RemainderItems: 3}
	if err := repo.Complete(context.Background(), "dist-1", sum); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	err := repo.Complete(context.Background(), "dist-1", sum)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second Complete() error = %v, want ErrConflict", err)
	}
}

func TestGormDistributionRepoCompleteMissing(t *testing.T) {
	t.Parallel()

	repo := NewGormDistributionRepo(setupTestDB(t))

	err := repo.Complete(context.Background(), "missing", domain.Summary{AgentCount: 1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Complete() error = %v, want ErrNotFound", err)
	}
}

func TestGormDistributionRepoFail(t *testing.T) {
	t.Parallel()

	repo := NewGormDistributionRepo(setupTestDB(t))
	seedDistribution(t, repo, "dist-1", domain.DistributionStatusProcessing)

	if err := repo.Fail(context.Background(), "dist-1", "no active agents available"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	got, err := repo.GetByID(context.Background(), "dist-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != domain.DistributionStatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.ProcessingError == nil || *got.ProcessingError != "no active agents available" {
		t.Fatalf("processing error = %v, want reason preserved", got.ProcessingError)
	}

	if err := repo.Complete(context.Background(), "dist-1", domain.Summary{AgentCount: 1}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Complete() after Fail() error = %v, want ErrConflict", err)
	}
}

func TestGormDistributionRepoList(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewGormDistributionRepo(db)

	for i := 1; i <= 3; i++ {
		dist := &domain.Distribution{
			ID:         fmt.Sprintf("dist-%d", i),
			Name:       fmt.Sprintf("Batch %d", i),
			TotalItems: i,
			Status:     domain.DistributionStatusProcessing,
		}
		if err := repo.Create(context.Background(), dist); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if err := repo.Fail(context.Background(), "dist-3", "boom"); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	all, total, err := repo.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("List() = %d items, total %d, want 3/3", len(all), total)
	}

	failed := domain.DistributionStatusFailed
	filtered, total, err := repo.List(context.Background(), ListParams{Status: &failed})
	if err != nil {
		t.Fatalf("List(failed) error = %v", err)
	}
	if total != 1 || len(filtered) != 1 || filtered[0].ID != "dist-3" {
		t.Fatalf("List(failed) = %+v, want only dist-3", filtered)
	}

	paged, total, err := repo.List(context.Background(), ListParams{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List(page 2) error = %v", err)
	}
	if total != 3 || len(paged) != 1 {
		t.Fatalf("List(page 2) = %d items, total %d, want 1/3", len(paged), total)
	}
}

func TestGormTaskRepoCreateBatchAndGet(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	agents := NewGormAgentRepo(db)
	distributions := NewGormDistributionRepo(db)
	tasks := NewGormTaskRepo(db)

	agent := seedAgent(t, agents, 1)
	seedDistribution(t, distributions, "dist-1", domain.DistributionStatusProcessing)

	batch := []*domain.Task{
		{
			ID:             "task-1",
			DistributionID: "dist-1",
			AgentID:        agent.ID,
			SubjectName:    "Subject 1",
			Status:         domain.TaskStatusAssigned,
			AssignedAt:     time.Now().UTC(),
		},
		{
			ID:             "task-2",
			DistributionID: "dist-1",
			AgentID:        agent.ID,
			SubjectName:    "Subject 2",
			Status:         domain.TaskStatusAssigned,
			AssignedAt:     time.Now().UTC(),
		},
	}
	if err := tasks.CreateBatch(context.Background(), batch); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	got, err := tasks.GetByID(context.Background(), "task-2")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.SubjectName != "Subject 2" || got.Status != domain.TaskStatusAssigned {
		t.Fatalf("GetByID() = %+v, want persisted task", got)
	}
}

func TestGormTaskRepoLifecycle(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	agents := NewGormAgentRepo(db)
	tasks := NewGormTaskRepo(db)

	agent := seedAgent(t, agents, 1)
	batch := []*domain.Task{{
		ID:             "task-1",
		DistributionID: "dist-1",
		AgentID:        agent.ID,
		SubjectName:    "Subject 1",
		Status:         domain.TaskStatusAssigned,
		AssignedAt:     time.Now().UTC(),
	}}
	if err := tasks.CreateBatch(context.Background(), batch); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	startedAt := time.Now().UTC()
	if err := tasks.Start(context.Background(), "task-1", startedAt); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := tasks.Start(context.Background(), "task-1", startedAt); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second Start() error = %v, want ErrConflict", err)
	}

	got, err := tasks.GetByID(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != domain.TaskStatusInProgress || got.StartedAt == nil {
		t.Fatalf("after Start() task = %+v, want IN_PROGRESS with timestamp", got)
	}

	if err := tasks.Complete(context.Background(), "task-1", time.Now().UTC()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if err := tasks.Complete(context.Background(), "task-1", time.Now().UTC()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second Complete() error = %v, want ErrConflict", err)
	}

	got, err = tasks.GetByID(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != domain.TaskStatusCompleted || got.CompletedAt == nil {
		t.Fatalf("after Complete() task = %+v, want COMPLETED with timestamp", got)
	}
}

func TestGormTaskRepoCompleteSkippingInProgressConflicts(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	agents := NewGormAgentRepo(db)
	tasks := NewGormTaskRepo(db)

	agent := seedAgent(t, agents, 1)
	batch := []*domain.Task{{
		ID:             "task-1",
		DistributionID: "dist-1",
		AgentID:        agent.ID,
		SubjectName:    "Subject 1",
		Status:         domain.TaskStatusAssigned,
		AssignedAt:     time.Now().UTC(),
	}}
	if err := tasks.CreateBatch(context.Background(), batch); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	err := tasks.Complete(context.Background(), "task-1", time.Now().UTC())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Complete() on ASSIGNED task error = %v, want ErrConflict", err)
	}
}

func TestGormTaskRepoStartMissing(t *testing.T) {
	t.Parallel()

	tasks := NewGormTaskRepo(setupTestDB(t))

	err := tasks.Start(context.Background(), "missing", time.Now().UTC())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Start() error = %v, want ErrNotFound", err)
	}
}

func TestGormTaskRepoCountByAgent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	agents := NewGormAgentRepo(db)
	tasks := NewGormTaskRepo(db)

	first := seedAgent(t, agents, 1)
	second := seedAgent(t, agents, 2)

	assigned := time.Now().UTC()
	batch := []*domain.Task{
		{ID: "task-1", DistributionID: "dist-1", AgentID: first.ID, SubjectName: "S1", Status: domain.TaskStatusAssigned, AssignedAt: assigned},
		{ID: "task-2", DistributionID: "dist-1", AgentID: first.ID, SubjectName: "S2", Status: domain.TaskStatusAssigned, AssignedAt: assigned},
		{ID: "task-3", DistributionID: "dist-1", AgentID: second.ID, SubjectName: "S3", Status: domain.TaskStatusAssigned, AssignedAt: assigned},
		{ID: "task-4", DistributionID: "dist-2", AgentID: second.ID, SubjectName: "S4", Status: domain.TaskStatusAssigned, AssignedAt: assigned},
	}
	if err := tasks.CreateBatch(context.Background(), batch); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	if err := tasks.Start(context.Background(), "task-2", assigned); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	counts, err := tasks.CountByAgent(context.Background(), "dist-1")
	if err != nil {
		t.Fatalf("CountByAgent() error = %v", err)
	}

	totals := map[string]int{}
	for _, row := range counts {
		if row.AgentName == "" {
			t.Fatalf("row %+v missing agent name", row)
		}
		totals[row.AgentID] += row.Count
	}
	if totals[first.ID] != 2 {
		t.Fatalf("agent 1 total = %d, want 2 (dist-2 tasks excluded)", totals[first.ID])
	}
	if totals[second.ID] != 1 {
		t.Fatalf("agent 2 total = %d, want 1", totals[second.ID])
	}
}

func TestGormAgentRepoCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := NewGormAgentRepo(setupTestDB(t))
	seedAgent(t, repo, 1)

	dup := &domain.Agent{
		ID:         "agent-99",
		Name:       "Someone Else",
		Email:      "agent1@leadflow.dev",
		Phone:      "+905559999999",
		Active:     true,
		EnrolledAt: time.Now().UTC(),
	}
	err := repo.Create(context.Background(), dup)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create() duplicate email error = %v, want ErrConflict", err)
	}
}

func TestGormAgentRepoListActiveOrder(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewGormAgentRepo(db)

	// Enrollment dates come from the seed index, so 3 enrolled after 1.
	seedAgent(t, repo, 3)
	seedAgent(t, repo, 1)
	inactive := seedAgent(t, repo, 2)

	if err := db.Model(&AgentModel{}).Where("id = ?", inactive.ID).Update("active", false).Error; err != nil {
		t.Fatalf("failed to deactivate agent: %v", err)
	}

	active, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("ListActive() = %d agents, want 2", len(active))
	}
	if active[0].ID != "agent-1" || active[1].ID != "agent-3" {
		t.Fatalf("ListActive() order = [%s %s], want enrollment order", active[0].ID, active[1].ID)
	}
}

func TestGormAgentRepoGetByIDNotFound(t *testing.T) {
	t.Parallel()

	repo := NewGormAgentRepo(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}
