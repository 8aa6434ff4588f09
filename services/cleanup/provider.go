package cleanup

import (
	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideCleanupScheduler(db *gorm.DB, config *config.Config, logger *logging.Service) Scheduler {
	return NewService(db, config, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideCleanupScheduler),
)
