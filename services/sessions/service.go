package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/authcore/services/logging"
	"github.com/tech-arch1tect/authcore/services/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrAlreadyRevoked  = errors.New("session already revoked")
	ErrForbidden       = errors.New("not authorized to manage this session")
)

// Session is the user-facing projection of a live refresh token. One session
// corresponds to one logged-in device or client.
type Session struct {
	ID         string    `json:"id"`
	DeviceInfo string    `json:"device_info"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type SessionRegistry interface {
	GetActiveSessions(userID uint) ([]Session, error)
	ValidateRefreshToken(userID uint, value string) (*token.RefreshToken, error)
	RevokeSession(requesterID uint, sessionID string, isAdmin bool) error
	DeleteSession(sessionID string, requesterID uint, isAdmin bool) error
}

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// GetActiveSessions returns the user's unrevoked, unexpired sessions newest
// first.
func (s *Service) GetActiveSessions(userID uint) ([]Session, error) {
	var rows []token.RefreshToken
	err := s.db.
		Where("user_id = ? AND is_revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to list active sessions",
				zap.Uint("user_id", userID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	sessions := make([]Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, Session{
			ID:         row.ID,
			DeviceInfo: row.DeviceInfo,
			CreatedAt:  row.CreatedAt,
			ExpiresAt:  row.ExpiresAt,
		})
	}

	return sessions, nil
}

// ValidateRefreshToken checks that the token exists, belongs to the user, and
// is neither revoked nor expired. Missing, foreign, and revoked tokens all
// surface as not-found so callers cannot probe other users' sessions.
func (s *Service) ValidateRefreshToken(userID uint, value string) (*token.RefreshToken, error) {
	var row token.RefreshToken
	err := s.db.Where("token = ?", value).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		if s.logger != nil {
			s.logger.Error("failed to validate refresh token", zap.Error(err))
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if row.UserID != userID || row.IsRevoked {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(row.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return &row, nil
}

// RevokeSession soft-revokes a session by id. The requester must own the
// session or be an admin.
func (s *Service) RevokeSession(requesterID uint, sessionID string, isAdmin bool) error {
	var row token.RefreshToken
	err := s.db.Where("id = ?", sessionID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if s.logger != nil {
			s.logger.Error("failed to fetch session for revocation",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		return fmt.Errorf("database error: %w", err)
	}

	if row.UserID != requesterID && !isAdmin {
		if s.logger != nil {
			s.logger.Warn("session revocation denied",
				zap.String("session_id", sessionID),
				zap.Uint("requester_id", requesterID),
				zap.Uint("owner_id", row.UserID))
		}
		return ErrForbidden
	}

	if row.IsRevoked {
		return ErrAlreadyRevoked
	}

	err = s.db.Model(&token.RefreshToken{}).
		Where("id = ?", sessionID).
		Update("is_revoked", true).Error
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke session",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("session revoked",
			zap.String("session_id", sessionID),
			zap.Uint("requester_id", requesterID),
			zap.Bool("is_admin", isAdmin))
	}

	return nil
}

// DeleteSession hard-deletes a session row under the same owner-or-admin rule
// as RevokeSession. Used by admin maintenance.
func (s *Service) DeleteSession(sessionID string, requesterID uint, isAdmin bool) error {
	var row token.RefreshToken
	err := s.db.Where("id = ?", sessionID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if s.logger != nil {
			s.logger.Error("failed to fetch session for deletion",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		return fmt.Errorf("database error: %w", err)
	}

	if row.UserID != requesterID && !isAdmin {
		if s.logger != nil {
			s.logger.Warn("session deletion denied",
				zap.String("session_id", sessionID),
				zap.Uint("requester_id", requesterID),
				zap.Uint("owner_id", row.UserID))
		}
		return ErrForbidden
	}

	if err := s.db.Where("id = ?", sessionID).Delete(&token.RefreshToken{}).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to delete session",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("session deleted",
			zap.String("session_id", sessionID),
			zap.Uint("requester_id", requesterID),
			zap.Bool("is_admin", isAdmin))
	}

	return nil
}
