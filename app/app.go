package app

import (
	"context"

	"github.com/tech-arch1tect/authcore/config"
	"go.uber.org/fx"
)

type App struct {
	config *config.Config
	fx     *fx.App
}

func (a *App) Config() *config.Config {
	return a.config
}

// Run blocks until the process receives a shutdown signal.
func (a *App) Run() {
	a.fx.Run()
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}
