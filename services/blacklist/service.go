package blacklist

import (
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/zap"
)

var ErrStoreNotConfigured = errors.New("blacklist store not configured")

type Service struct {
	config *config.Config
	store  Store
	logger *logging.Service
}

func NewService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	if logger != nil {
		logger.Info("initializing access token blacklist",
			zap.String("store_type", cfg.Blacklist.Store))
	}

	return &Service{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

func (s *Service) Add(accessToken string, ttl time.Duration) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}

	if err := s.store.Add(accessToken, ttl); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to blacklist access token", zap.Error(err))
		}
		return fmt.Errorf("failed to blacklist access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("access token blacklisted", zap.Duration("ttl", ttl))
	}

	return nil
}

func (s *Service) IsBlacklisted(accessToken string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreNotConfigured
	}

	blacklisted, err := s.store.IsBlacklisted(accessToken)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to check blacklist", zap.Error(err))
		}
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return blacklisted, nil
}

// PruneExpiredTokens removes entries past their TTL and returns how many went.
// Called by the maintenance coordinator on its daily schedule.
func (s *Service) PruneExpiredTokens() (int64, error) {
	if s.store == nil {
		return 0, ErrStoreNotConfigured
	}

	pruned, err := s.store.PruneExpiredTokens()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to prune expired blacklist entries", zap.Error(err))
		}
		return 0, fmt.Errorf("failed to prune expired blacklist entries: %w", err)
	}

	if s.logger != nil && pruned > 0 {
		s.logger.Info("pruned expired blacklist entries", zap.Int64("count", pruned))
	}

	return pruned, nil
}
