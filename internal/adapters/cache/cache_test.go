package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-route-service/internal/adapters/repositories"
	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/db"
	"bus-route-service/internal/ports"
)

var (
	school = domain.Coordinates{Lon: 76.3647, Lat: 30.3565}
	stopA  = domain.Coordinates{Lon: 76.37, Lat: 30.36}
	stopB  = domain.Coordinates{Lon: 76.38, Lat: 30.37}
)

func newSqlite(t *testing.T) (*SqliteDistanceCache, *SqliteGeocodeCache) {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(conn))
	return NewSqliteDistanceCache(conn), NewSqliteGeocodeCache(conn)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *RedisDistanceCache, *RedisGeocodeCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisDistanceCache(rdb, time.Hour), NewRedisGeocodeCache(rdb, time.Hour)
}

func exerciseDistanceCache(t *testing.T, c ports.DistanceCache) {
	ctx := context.Background()

	got, err := c.GetMany(ctx, "driving-car", school, []domain.Coordinates{stopA, stopB})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.PutMany(ctx, "driving-car", school, map[string]float64{
		school.Key(): 0,
		stopA.Key():  1234.5,
	}))

	got, err = c.GetMany(ctx, "driving-car", school, []domain.Coordinates{school, stopA, stopB, stopA})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{school.Key(): 0, stopA.Key(): 1234.5}, got)

	// Direction matters: nothing is cached from stopA.
	got, err = c.GetMany(ctx, "driving-car", stopA, []domain.Coordinates{school})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Profiles are isolated.
	got, err = c.GetMany(ctx, "foot-walking", school, []domain.Coordinates{stopA})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Overwrite.
	require.NoError(t, c.PutMany(ctx, "driving-car", school, map[string]float64{stopA.Key(): 999}))
	got, err = c.GetMany(ctx, "driving-car", school, []domain.Coordinates{stopA})
	require.NoError(t, err)
	assert.Equal(t, 999.0, got[stopA.Key()])
}

func exerciseGeocodeCache(t *testing.T, c ports.GeocodeCache) {
	ctx := context.Background()

	got, err := c.GetMany(ctx, []string{"1 School Lane"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"1 School Lane": school}))

	got, err = c.GetMany(ctx, []string{"1 School Lane", " 1 School Lane ", "", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"1 School Lane": school}, got)
}

func TestSqliteDistanceCache(t *testing.T) {
	dc, _ := newSqlite(t)
	exerciseDistanceCache(t, dc)
}

func TestSqliteGeocodeCache(t *testing.T) {
	_, gc := newSqlite(t)
	exerciseGeocodeCache(t, gc)
}

func TestRedisDistanceCache(t *testing.T) {
	mr, dc, _ := newRedis(t)
	exerciseDistanceCache(t, dc)

	key := dc.hashKey("driving-car", school)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRedisGeocodeCache(t *testing.T) {
	mr, _, gc := newRedis(t)
	exerciseGeocodeCache(t, gc)

	mr.FastForward(2 * time.Hour)
	got, err := gc.GetMany(context.Background(), []string{"1 School Lane"})
	require.NoError(t, err)
	assert.Empty(t, got, "entries expire after the ttl")
}

func TestNilBackends(t *testing.T) {
	ctx := context.Background()

	_, err := NewSQLDistanceCache(nil).GetMany(ctx, "driving-car", school, []domain.Coordinates{stopA})
	require.Error(t, err)
	_, err = NewSQLGeocodeCache(nil).GetMany(ctx, []string{"a"})
	require.Error(t, err)
	_, err = NewRedisDistanceCache(nil, 0).GetMany(ctx, "driving-car", school, []domain.Coordinates{stopA})
	require.Error(t, err)
}
