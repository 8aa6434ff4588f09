package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken          = errors.New("invalid refresh token")
	ErrTokenGenerationFailed = errors.New("failed to generate secure token")
	ErrCapEnforcement        = errors.New("token cap enforcement failed")
)

type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logging.Service
}

type TokenManager interface {
	CreateToken(userID uint, deviceInfo string, tokenValue string) (*RefreshToken, error)
	FindByToken(value string) (*RefreshToken, error)
	DeleteToken(id string) (bool, error)
	InvalidateToken(value string) error
	RotateToken(oldValue string) (string, error)
	RevokeAllTokens(userID uint) (int64, error)
}

func NewService(db *gorm.DB, config *config.Config, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing token manager",
			zap.Duration("token_ttl", config.RefreshToken.TTL.Duration()),
			zap.Int("token_length", config.RefreshToken.TokenLength),
			zap.Int("max_per_user", config.RefreshToken.MaxPerUser))
	}

	return &Service{
		db:     db,
		config: config,
		logger: logger,
	}
}

// CreateToken issues a refresh token for the user. When tokenValue is empty a
// cryptographically random secret is generated. The per-user cap is enforced
// before insertion; cap enforcement failures never fail issuance.
func (s *Service) CreateToken(userID uint, deviceInfo string, tokenValue string) (*RefreshToken, error) {
	if tokenValue == "" {
		generated, err := s.generateSecureToken()
		if err != nil {
			if s.logger != nil {
				s.logger.Error("failed to generate secure refresh token", zap.Error(err))
			}
			return nil, ErrTokenGenerationFailed
		}
		tokenValue = generated
	}

	if err := s.enforceTokenLimit(userID); err != nil {
		if s.logger != nil {
			s.logger.Warn("soft cap enforcement warning - issuing token anyway",
				zap.Uint("user_id", userID),
				zap.Error(fmt.Errorf("%w: %v", ErrCapEnforcement, err)))
		}
	}

	now := time.Now()
	refreshToken := RefreshToken{
		ID:         uuid.New().String(),
		Token:      tokenValue,
		UserID:     userID,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.config.RefreshToken.TTL.Duration()),
	}

	if err := s.db.Create(&refreshToken).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store refresh token",
				zap.Uint("user_id", userID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("refresh token issued",
			zap.Uint("user_id", userID),
			zap.String("token_id", refreshToken.ID),
			zap.Time("expires_at", refreshToken.ExpiresAt))
	}

	return &refreshToken, nil
}

// enforceTokenLimit keeps a user's live token count at or below the configured
// maximum by revoking the oldest tokens first. The bound is soft: concurrent
// issuance at the boundary may transiently exceed it by one.
func (s *Service) enforceTokenLimit(userID uint) error {
	max := s.config.RefreshToken.MaxPerUser
	if max <= 0 {
		return nil
	}

	now := time.Now()

	var liveCount int64
	err := s.db.Model(&RefreshToken{}).
		Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, now).
		Count(&liveCount).Error
	if err != nil {
		return fmt.Errorf("failed to count live tokens: %w", err)
	}

	if liveCount < int64(max) {
		return nil
	}

	// Revoke enough of the oldest tokens that the count is max-1, leaving
	// room for the row about to be inserted.
	overflow := int(liveCount) - max + 1

	var victims []RefreshToken
	err = s.db.
		Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, now).
		Order("created_at asc").
		Limit(overflow).
		Find(&victims).Error
	if err != nil {
		return fmt.Errorf("failed to select oldest tokens: %w", err)
	}

	ids := make([]string, 0, len(victims))
	for _, v := range victims {
		ids = append(ids, v.ID)
	}

	if len(ids) == 0 {
		return nil
	}

	result := s.db.Model(&RefreshToken{}).
		Where("id IN ?", ids).
		Update("is_revoked", true)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke oldest tokens: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("evicted oldest refresh tokens at cap",
			zap.Uint("user_id", userID),
			zap.Int("max_per_user", max),
			zap.Int64("evicted", result.RowsAffected))
	}

	return nil
}

// FindByToken looks up a live (unrevoked) token by its value. Absence is not
// an error: a missing token returns (nil, nil).
func (s *Service) FindByToken(value string) (*RefreshToken, error) {
	var refreshToken RefreshToken
	err := s.db.Where("token = ? AND is_revoked = ?", value, false).First(&refreshToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if s.logger != nil {
			s.logger.Error("failed to look up refresh token", zap.Error(err))
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &refreshToken, nil
}

func (s *Service) DeleteToken(id string) (bool, error) {
	result := s.db.Where("id = ?", id).Delete(&RefreshToken{})
	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to delete refresh token",
				zap.String("token_id", id),
				zap.Error(result.Error))
		}
		return false, fmt.Errorf("failed to delete refresh token: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("refresh token deleted",
			zap.String("token_id", id),
			zap.Int64("affected_rows", result.RowsAffected))
	}

	return result.RowsAffected > 0, nil
}

func (s *Service) InvalidateToken(value string) error {
	result := s.db.Model(&RefreshToken{}).
		Where("token = ? AND is_revoked = ?", value, false).
		Update("is_revoked", true)
	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to invalidate refresh token", zap.Error(result.Error))
		}
		return fmt.Errorf("failed to invalidate refresh token: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("refresh token invalidated",
			zap.Int64("affected_rows", result.RowsAffected))
	}

	return nil
}

// RotateToken revokes the old token and issues a replacement carrying the same
// user and device info with a fresh TTL. The two writes are not transactional:
// a crash between them loses the session rather than leaving two live tokens.
func (s *Service) RotateToken(oldValue string) (string, error) {
	oldToken, err := s.FindByToken(oldValue)
	if err != nil {
		return "", err
	}
	if oldToken == nil {
		if s.logger != nil {
			s.logger.Warn("token rotation failed - token not found or revoked")
		}
		return "", ErrInvalidToken
	}

	if err := s.InvalidateToken(oldValue); err != nil {
		return "", fmt.Errorf("failed to revoke token during rotation: %w", err)
	}

	newToken, err := s.CreateToken(oldToken.UserID, oldToken.DeviceInfo, "")
	if err != nil {
		return "", fmt.Errorf("failed to create replacement token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("refresh token rotated",
			zap.Uint("user_id", oldToken.UserID),
			zap.String("old_token_id", oldToken.ID),
			zap.String("new_token_id", newToken.ID))
	}

	return newToken.Token, nil
}

// RevokeAllTokens marks every live token for the user as revoked and returns
// the number of rows affected. Used by logout-everywhere and account deletion.
func (s *Service) RevokeAllTokens(userID uint) (int64, error) {
	result := s.db.Model(&RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true)
	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke all user tokens",
				zap.Uint("user_id", userID),
				zap.Error(result.Error))
		}
		return 0, fmt.Errorf("failed to revoke all user tokens: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("all user refresh tokens revoked",
			zap.Uint("user_id", userID),
			zap.Int64("count", result.RowsAffected))
	}

	return result.RowsAffected, nil
}

func (s *Service) generateSecureToken() (string, error) {
	tokenBytes := make([]byte, s.config.RefreshToken.TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}
