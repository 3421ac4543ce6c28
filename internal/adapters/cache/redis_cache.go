package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"bus-route-service/internal/domain"
	"bus-route-service/internal/platform/obs"
)

const DefaultRedisTTL = 30 * 24 * time.Hour

// RedisDistanceCache stores one hash per (profile, origin) whose fields are
// destination keys.
type RedisDistanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDistanceCache(rdb *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{rdb: rdb, ttl: ttl}
}

func (c *RedisDistanceCache) hashKey(profile string, origin domain.Coordinates) string {
	return "dist:" + profile + ":" + origin.Key()
}

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if c.rdb == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.hashKey(profile, origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: hmget: %w", err)
	}

	out := make(map[string]float64, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		m, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("get distance cache: parse %q: %w", uniq[i], err)
		}
		out[uniq[i]] = m
	}
	return out, nil
}

func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	profile string,
	origin domain.Coordinates,
	meters map[string]float64,
) error {
	if c.rdb == nil {
		return errors.New("distance cache: redis client is nil")
	}
	if len(meters) == 0 {
		return nil
	}

	fields := make(map[string]any, len(meters))
	for k, m := range meters {
		fields[k] = strconv.FormatFloat(m, 'f', -1, 64)
	}

	key := c.hashKey(profile, origin)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		if c.ttl > 0 {
			p.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert distance cache: %w", err)
	}
	return nil
}

// RedisGeocodeCache stores one JSON value per normalized address.
type RedisGeocodeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGeocodeCache(rdb *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{rdb: rdb, ttl: ttl}
}

type redisCoordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func geocodeKey(address string) string { return "geo:" + address }

func (c *RedisGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	if c.rdb == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = geocodeKey(a)
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rc redisCoordinates
		if err := json.Unmarshal([]byte(s), &rc); err != nil {
			return nil, fmt.Errorf("get geocode cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = domain.Coordinates{Lon: rc.Lon, Lat: rc.Lat}
	}
	return out, nil
}

func (c *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if c.rdb == nil {
		return errors.New("geocode cache: redis client is nil")
	}
	if len(results) == 0 {
		return nil
	}

	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for addr, coords := range results {
			b, err := json.Marshal(redisCoordinates{Lon: coords.Lon, Lat: coords.Lat})
			if err != nil {
				return err
			}
			p.Set(ctx, geocodeKey(addr), b, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert geocode cache: %w", err)
	}
	return nil
}
