package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"p2plending/internal/domain/loan"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOracle struct {
	calls int
	price *loan.PriceData
	err   error
}

func (o *countingOracle) LastPrice(context.Context, loan.OracleAsset) (*loan.PriceData, error) {
	o.calls++
	return o.price, o.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCached_ReadThrough(t *testing.T) {
	mr, rdb := newRedis(t)
	next := &countingOracle{price: &loan.PriceData{Price: decimal.NewFromInt(42), Timestamp: 1709294400}}
	c := NewCached(next, rdb, 30*time.Second, nil, nil)
	ctx := context.Background()
	a := symbol("reflector", "BTC")

	for i := 0; i < 3; i++ {
		pd, err := c.LastPrice(ctx, a)
		require.NoError(t, err)
		require.NotNil(t, pd)
		assert.True(t, pd.Price.Equal(decimal.NewFromInt(42)))
		assert.Equal(t, uint64(1709294400), pd.Timestamp)
	}
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists("oracle:lastprice:reflector:symbol:BTC"))

	mr.FastForward(31 * time.Second)
	_, err := c.LastPrice(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCached_KeysDistinguishSymbolAndAsset(t *testing.T) {
	assert.NotEqual(t,
		cacheKey(symbol("reflector", "XLM")),
		cacheKey(loan.OracleAsset{Oracle: "reflector", Asset: loan.StringPtr("XLM")}))
}

func TestCached_NoDataIsNotCached(t *testing.T) {
	_, rdb := newRedis(t)
	next := &countingOracle{}
	c := NewCached(next, rdb, time.Minute, nil, nil)

	for i := 0; i < 2; i++ {
		pd, err := c.LastPrice(context.Background(), symbol("reflector", "DOGE"))
		require.NoError(t, err)
		assert.Nil(t, pd)
	}
	assert.Equal(t, 2, next.calls)
}

func TestCached_PropagatesFeedError(t *testing.T) {
	_, rdb := newRedis(t)
	next := &countingOracle{err: errors.New("feed down")}
	c := NewCached(next, rdb, time.Minute, nil, nil)

	_, err := c.LastPrice(context.Background(), symbol("reflector", "BTC"))
	assert.EqualError(t, err, "feed down")
}

func TestCached_RedisDownFallsThrough(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	next := &countingOracle{price: &loan.PriceData{Price: decimal.NewFromInt(7), Timestamp: 1}}
	c := NewCached(next, rdb, time.Minute, nil, nil)

	pd, err := c.LastPrice(context.Background(), symbol("reflector", "BTC"))
	require.NoError(t, err)
	require.NotNil(t, pd)
	assert.Equal(t, 1, next.calls)
}

func TestCached_ZeroTTLBypasses(t *testing.T) {
	mr, rdb := newRedis(t)
	next := &countingOracle{price: &loan.PriceData{Price: decimal.NewFromInt(1), Timestamp: 1}}
	c := NewCached(next, rdb, 0, nil, nil)

	_, _ = c.LastPrice(context.Background(), symbol("reflector", "BTC"))
	_, _ = c.LastPrice(context.Background(), symbol("reflector", "BTC"))
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, mr.Keys())
}
