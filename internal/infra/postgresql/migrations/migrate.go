package migrations

import (
	"github.com/candemiralp/leadflow/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_agents",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.AgentModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_agents_email ON agents (email)`,
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_agents_phone ON agents (phone)`,
					`CREATE INDEX IF NOT EXISTS idx_agents_active_enrolled ON agents (active, enrolled_at)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.AgentModel{})
			},
		},
		{
			ID: "000002_create_distributions",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.DistributionModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_distributions_status_created ON distributions (status, created_at)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.DistributionModel{})
			},
		},
		{
			ID: "000003_create_tasks",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.TaskModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_tasks_distribution_id ON tasks (distribution_id)`,
					`CREATE INDEX IF NOT EXISTS idx_tasks_agent_status ON tasks (agent_id, status)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.TaskModel{})
			},
		},
	})

	return m.Migrate()
}
