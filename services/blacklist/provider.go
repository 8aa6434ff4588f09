package blacklist

import (
	"github.com/redis/go-redis/v9"
	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/fx"
)

func ProvideBlacklistService(cfg *config.Config, logger *logging.Service) *Service {
	var store Store
	switch cfg.Blacklist.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Blacklist.RedisAddr,
			DB:   cfg.Blacklist.RedisDB,
		})
		store = NewRedisStore(client)
	default:
		store = NewMemoryStore()
	}

	return NewService(cfg, store, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideBlacklistService),
)
