package authflow

import (
	"fmt"
	"time"

	"github.com/mileusna/useragent"
	"github.com/tech-arch1tect/authcore/services/logging"
	"github.com/tech-arch1tect/authcore/services/signer"
	"github.com/tech-arch1tect/authcore/services/token"
	"go.uber.org/zap"
)

type TokenSigner interface {
	Sign(userID uint) (string, error)
	Verify(tokenString string) (*signer.Claims, error)
}

type Blacklist interface {
	Add(accessToken string, ttl time.Duration) error
}

// AuthTokens is the credential pair handed to the login and refresh flows.
type AuthTokens struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Service is the thin composition layer between the authentication flow and
// the trust core: it routes logins, refreshes, and logouts into the token
// manager, signer, and blacklist without holding state of its own.
type Service struct {
	tokens    token.TokenManager
	signer    TokenSigner
	blacklist Blacklist
	logger    *logging.Service
}

func NewService(tokens token.TokenManager, tokenSigner TokenSigner, bl Blacklist, logger *logging.Service) *Service {
	return &Service{
		tokens:    tokens,
		signer:    tokenSigner,
		blacklist: bl,
		logger:    logger,
	}
}

// Login issues a fresh credential pair for the user. The device label is
// derived from the client's User-Agent string.
func (s *Service) Login(userID uint, userAgent string) (*AuthTokens, error) {
	refreshToken, err := s.tokens.CreateToken(userID, DeviceLabel(userAgent), "")
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	accessToken, err := s.signer.Sign(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("login issued credential pair",
			zap.Uint("user_id", userID),
			zap.String("device_info", refreshToken.DeviceInfo))
	}

	return &AuthTokens{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken.Token,
		RefreshExpiresAt: refreshToken.ExpiresAt,
	}, nil
}

// Refresh rotates the refresh token and signs a new access token for its
// owner.
func (s *Service) Refresh(refreshValue string) (*AuthTokens, error) {
	current, err := s.tokens.FindByToken(refreshValue)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, token.ErrInvalidToken
	}

	newValue, err := s.tokens.RotateToken(refreshValue)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.signer.Sign(current.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	rotated, err := s.tokens.FindByToken(newValue)
	if err != nil {
		return nil, err
	}
	if rotated == nil {
		return nil, token.ErrInvalidToken
	}

	return &AuthTokens{
		AccessToken:      accessToken,
		RefreshToken:     newValue,
		RefreshExpiresAt: rotated.ExpiresAt,
	}, nil
}

// Logout revokes the refresh token and blacklists the access token for the
// remainder of its lifetime. An access token that no longer verifies has
// nothing left to blacklist.
func (s *Service) Logout(refreshValue string, accessToken string) error {
	if err := s.tokens.InvalidateToken(refreshValue); err != nil {
		return err
	}

	if accessToken == "" {
		return nil
	}

	claims, err := s.signer.Verify(accessToken)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("skipping blacklist of unverifiable access token", zap.Error(err))
		}
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.Add(accessToken, ttl); err != nil {
		return fmt.Errorf("failed to blacklist access token on logout: %w", err)
	}

	return nil
}

// LogoutEverywhere revokes every live refresh token for the user and returns
// how many sessions went.
func (s *Service) LogoutEverywhere(userID uint) (int64, error) {
	return s.tokens.RevokeAllTokens(userID)
}

// DeviceLabel turns a raw User-Agent string into a short human-readable
// session label, e.g. "Firefox on Linux". Unknown agents yield an empty label.
func DeviceLabel(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.Parse(userAgentString)
	if ua.Name == "" {
		return ""
	}
	if ua.OS == "" {
		return ua.Name
	}
	return ua.Name + " on " + ua.OS
}
