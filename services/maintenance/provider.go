package maintenance

import (
	"context"

	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/blacklist"
	"github.com/tech-arch1tect/authcore/services/cleanup"
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/fx"
)

func ProvideCoordinator(cfg *config.Config, scheduler cleanup.Scheduler, blacklistService *blacklist.Service, logger *logging.Service) *Coordinator {
	return NewCoordinator(cfg, scheduler, blacklistService, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideCoordinator),
	fx.Invoke(func(lc fx.Lifecycle, coordinator *Coordinator) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				coordinator.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				coordinator.Stop()
				return nil
			},
		})
	}),
)
