package token

import (
	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideTokenManager(db *gorm.DB, config *config.Config, logger *logging.Service) TokenManager {
	return NewService(db, config, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideTokenManager),
)
