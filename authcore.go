// Package authcore is the trust core of an authentication service: it issues,
// rotates, bounds, revokes, and garbage-collects refresh tokens for a
// multi-tenant user base, safe to run as many uncoordinated instances against
// one shared store.
package authcore

import (
	"github.com/tech-arch1tect/authcore/app"
	"github.com/tech-arch1tect/authcore/config"
)

type App = app.App

func New() *app.Builder {
	return app.NewBuilder()
}

func WithConfig(cfg *config.Config) *app.Builder {
	return app.NewBuilder().WithConfig(cfg)
}
