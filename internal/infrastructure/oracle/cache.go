package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"p2plending/internal/domain/loan"
	"p2plending/internal/observability/metrics"

	"github.com/redis/go-redis/v9"
)

// Cached is a read-through redis cache in front of a PriceOracle. Only
// observed prices are cached; "no data" answers always go to the feed.
type Cached struct {
	next    loan.PriceOracle
	rdb     redis.Cmdable
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.LendingMetrics
}

func NewCached(next loan.PriceOracle, rdb redis.Cmdable, ttl time.Duration, log *slog.Logger, m *metrics.LendingMetrics) *Cached {
	if log == nil {
		log = slog.Default()
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl, log: log, metrics: m}
}

func cacheKey(a loan.OracleAsset) string {
	kind := "asset"
	if a.Symbol != nil {
		kind = "symbol"
	}
	ref, _ := a.Ref()
	return "oracle:lastprice:" + a.Oracle + ":" + kind + ":" + ref
}

func (c *Cached) LastPrice(ctx context.Context, a loan.OracleAsset) (*loan.PriceData, error) {
	if c.ttl <= 0 {
		return c.next.LastPrice(ctx, a)
	}
	key := cacheKey(a)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var pd loan.PriceData
		if jerr := json.Unmarshal(raw, &pd); jerr == nil {
			c.metrics.RecordOracleCache(true)
			return &pd, nil
		}
		c.log.WarnContext(ctx, "oracle cache entry unreadable", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.WarnContext(ctx, "oracle cache unavailable", "key", key, "error", err)
	}
	c.metrics.RecordOracleCache(false)

	pd, err := c.next.LastPrice(ctx, a)
	if err != nil || pd == nil {
		return pd, err
	}
	if payload, jerr := json.Marshal(pd); jerr == nil {
		if serr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.log.WarnContext(ctx, "oracle cache write failed", "key", key, "error", serr)
		}
	}
	return pd, nil
}
