package cleanup

import (
	"fmt"
	"time"

	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/logging"
	"github.com/tech-arch1tect/authcore/services/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result reports what one sweep did.
type Result struct {
	Revoked int64 `json:"revoked"`
	Deleted int64 `json:"deleted"`
}

type Scheduler interface {
	PerformCleanup() (Result, error)
}

type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logging.Service
}

func NewService(db *gorm.DB, config *config.Config, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing cleanup scheduler",
			zap.Duration("interval", config.Cleanup.Interval),
			zap.Int("retention_days", config.RefreshToken.RetentionDays))
	}

	return &Service{
		db:     db,
		config: config,
		logger: logger,
	}
}

// PerformCleanup runs the two-phase sweep. The soft phase revokes tokens past
// their natural expiry, keeping the rows visible for the retention window. The
// hard phase deletes rows whose expiry is older than the retention window.
// Both phases are idempotent, so concurrent sweeps from multiple instances
// converge to the same state.
func (s *Service) PerformCleanup() (Result, error) {
	now := time.Now()
	var result Result

	softResult := s.db.Model(&token.RefreshToken{}).
		Where("expires_at < ? AND is_revoked = ?", now, false).
		Update("is_revoked", true)
	if softResult.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke expired refresh tokens", zap.Error(softResult.Error))
		}
		return result, fmt.Errorf("failed to revoke expired tokens: %w", softResult.Error)
	}
	result.Revoked = softResult.RowsAffected

	retentionCutoff := now.Add(-time.Duration(s.config.RefreshToken.RetentionDays) * 24 * time.Hour)
	hardResult := s.db.Where("expires_at < ?", retentionCutoff).Delete(&token.RefreshToken{})
	if hardResult.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to delete refresh tokens past retention", zap.Error(hardResult.Error))
		}
		return result, fmt.Errorf("failed to delete tokens past retention: %w", hardResult.Error)
	}
	result.Deleted = hardResult.RowsAffected

	if s.logger != nil {
		if result.Revoked > 0 || result.Deleted > 0 {
			s.logger.Info("refresh token cleanup completed",
				zap.Int64("revoked", result.Revoked),
				zap.Int64("deleted", result.Deleted))
		} else {
			s.logger.Debug("refresh token cleanup found nothing to do")
		}
	}

	return result, nil
}
