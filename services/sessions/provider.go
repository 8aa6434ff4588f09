package sessions

import (
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideSessionRegistry(db *gorm.DB, logger *logging.Service) SessionRegistry {
	return NewService(db, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideSessionRegistry),
)
