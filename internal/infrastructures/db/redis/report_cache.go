package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	derr "github.com/Alexico1969/bkk-tracker/internal/domain/errors"
	"github.com/Alexico1969/bkk-tracker/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// ReportCacheRepository stores finished watch reports so repeated
// invocations within the TTL serve the same snapshot instead of
// re-querying the upstream.
type ReportCacheRepository struct {
	redis *redis.Client
}

func NewReportCacheRepository(redisClient *redis.Client) *ReportCacheRepository {
	return &ReportCacheRepository{redis: redisClient}
}

func (r *ReportCacheRepository) GetReport(ctx context.Context, key string) (models.Report, error) {
	data, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Report{}, derr.ErrReportNotFound
		}
		return models.Report{}, fmt.Errorf("redis get report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return models.Report{}, fmt.Errorf("unmarshal cached report: %w", err)
	}

	return report, nil
}

func (r *ReportCacheRepository) SetReport(ctx context.Context, key string, report models.Report, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report for cache: %w", err)
	}

	if err := r.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set report: %w", err)
	}

	return nil
}
