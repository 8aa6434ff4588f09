package authflow

import (
	"github.com/tech-arch1tect/authcore/services/blacklist"
	"github.com/tech-arch1tect/authcore/services/logging"
	"github.com/tech-arch1tect/authcore/services/signer"
	"github.com/tech-arch1tect/authcore/services/token"
	"go.uber.org/fx"
)

func ProvideAuthFlow(tokens token.TokenManager, tokenSigner *signer.Service, bl *blacklist.Service, logger *logging.Service) *Service {
	return NewService(tokens, tokenSigner, bl, logger)
}

var Options = fx.Options(
	fx.Provide(ProvideAuthFlow),
)
