package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/internal/contracts"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/redis"
)

const priceCacheTTL = 15 * time.Minute

// CachedPrices fronts the price repository with a Redis cache. With
// caching disabled it degrades to plain repository reads.
type CachedPrices struct {
	repo   *PriceRepository
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedPrices wraps a price repository with a cache.
func NewCachedPrices(repo *PriceRepository, cache *redis.Cache, log *logger.Logger) *CachedPrices {
	return &CachedPrices{repo: repo, cache: cache, logger: log}
}

// GetHistory reads bars through the cache.
func (c *CachedPrices) GetHistory(ctx context.Context, code string, from time.Time) ([]contracts.PriceBar, error) {
	key := fmt.Sprintf("prices:%s:%s", code, from.Format("2006-01-02"))

	var cached []contracts.PriceBar
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Price cache read failed")
	} else if hit {
		return cached, nil
	}

	bars, err := c.repo.GetHistory(ctx, code, from)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, bars, priceCacheTTL); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Price cache write failed")
	}
	return bars, nil
}

// SaveBatch writes bars and drops any stale cache entries for the
// affected codes.
func (c *CachedPrices) SaveBatch(ctx context.Context, bars []contracts.PriceBar) error {
	if err := c.repo.SaveBatch(ctx, bars); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, bar := range bars {
		if seen[bar.Code] {
			continue
		}
		seen[bar.Code] = true
		if err := c.cache.DeletePrefix(ctx, "prices:"+bar.Code); err != nil {
			c.logger.WithError(err).WithField("code", bar.Code).Warn("Price cache invalidation failed")
		}
	}
	return nil
}
