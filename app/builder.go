package app

import (
	"errors"
	"fmt"

	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/database"
	"github.com/tech-arch1tect/authcore/server"
	"github.com/tech-arch1tect/authcore/services/authflow"
	"github.com/tech-arch1tect/authcore/services/blacklist"
	"github.com/tech-arch1tect/authcore/services/cleanup"
	"github.com/tech-arch1tect/authcore/services/logging"
	"github.com/tech-arch1tect/authcore/services/maintenance"
	"github.com/tech-arch1tect/authcore/services/sessions"
	"github.com/tech-arch1tect/authcore/services/signer"
	"github.com/tech-arch1tect/authcore/services/token"
	"go.uber.org/fx"
)

// Builder assembles the trust core bottom-up: store, then token manager,
// session registry, cleanup scheduler, and maintenance coordinator, each
// holding direct references to what it needs. No cyclic object graph.
type Builder struct {
	config          *config.Config
	fxOptions       []fx.Option
	withAdminServer bool
	withMaintenance bool
	errs            []error
}

func NewBuilder() *Builder {
	return &Builder{
		withMaintenance: true,
	}
}

func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	if cfg == nil {
		b.errs = append(b.errs, errors.New("config cannot be nil"))
		return b
	}
	b.config = cfg
	return b
}

func (b *Builder) WithAutoConfig() *Builder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.errs = append(b.errs, fmt.Errorf("failed to load config: %w", err))
		return b
	}
	b.config = cfg
	return b
}

func (b *Builder) WithAdminServer() *Builder {
	b.withAdminServer = true
	return b
}

func (b *Builder) WithoutMaintenance() *Builder {
	b.withMaintenance = false
	return b
}

func (b *Builder) WithFxOptions(opts ...fx.Option) *Builder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *Builder) Build() (*App, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	if b.config == nil {
		b.WithAutoConfig()
		if len(b.errs) > 0 {
			return nil, errors.Join(b.errs...)
		}
	}

	options := []fx.Option{
		config.NewProvider(b.config),
		logging.Module,
		fx.Supply(database.WithModels(&token.RefreshToken{})),
		database.Module,
		token.Options,
		sessions.Options,
		cleanup.Options,
		blacklist.Options,
		signer.Options,
		authflow.Options,
	}

	if b.withMaintenance {
		options = append(options, maintenance.Options)
	}

	if b.withAdminServer {
		options = append(options, server.NewProvider())
	}

	options = append(options, b.fxOptions...)

	return &App{
		config: b.config,
		fx:     fx.New(options...),
	}, nil
}
