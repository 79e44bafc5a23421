package migration

import (
	auditdomain "github.com/orgboard/orgboard/internal/audit/domain"
	"github.com/orgboard/orgboard/internal/config"
	orgdomain "github.com/orgboard/orgboard/internal/organization/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite is for local runs and tests; let gorm own its schema.
			return conn.AutoMigrate(
				&orgdomain.Organization{},
				&orgdomain.Member{},
				&auditdomain.AuditLog{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
