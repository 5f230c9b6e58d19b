package service

import (
	"context"
	"time"

	"school_lms_backend/internal/model"
	"school_lms_backend/internal/util"
	"school_lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// QuarterStore is the persistence surface the gate needs; satisfied by
// repository.ConfigRepository.
type QuarterStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

const quarterCacheKey = "config:active_quarter"
const quarterCacheTTL = 30 * time.Second

// QuarterService holds the single process-wide "currently taught quarter"
// value. It scopes what students see when browsing; submission eligibility
// deliberately does not consult it.
type QuarterService struct {
	Store QuarterStore
	Redis *redis.Client // optional read cache; nil disables caching
}

func NewQuarterService(store QuarterStore, rdb *redis.Client) *QuarterService {
	return &QuarterService{Store: store, Redis: rdb}
}

// GetActive returns the active quarter tag. The row is seeded at migration
// time; if it is somehow absent the default "Q1" is returned without
// writing anything.
func (s *QuarterService) GetActive(ctx context.Context) (string, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, quarterCacheKey).Result(); err == nil && model.ValidQuarter(cached) {
			return cached, nil
		}
	}

	value, err := s.Store.Get(model.ActiveQuarterKey)
	if err != nil {
		return "", err
	}
	if !model.ValidQuarter(value) {
		value = model.DefaultQuarter
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, quarterCacheKey, value, quarterCacheTTL).Err(); err != nil {
			logger.Log.Warn("failed to cache active quarter", zap.Error(err))
		}
	}
	return value, nil
}

// SetActive switches the taught quarter. Listing endpoints reflect the new
// value as soon as the cache entry expires or is invalidated here; in-flight
// requests may still observe the previous value.
func (s *QuarterService) SetActive(ctx context.Context, quarter string) error {
	if !model.ValidQuarter(quarter) {
		return util.ErrInvalidQuarter
	}
	if err := s.Store.Set(model.ActiveQuarterKey, quarter); err != nil {
		return err
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, quarterCacheKey).Err(); err != nil {
			logger.Log.Warn("failed to invalidate quarter cache", zap.Error(err))
		}
	}
	logger.Log.Info("active quarter changed", zap.String("quarter", quarter))
	return nil
}
