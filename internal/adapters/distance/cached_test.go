package distance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus-route-service/internal/domain"
)

type memDistanceCache struct {
	mu   sync.Mutex
	data map[string]float64
}

func newMemDistanceCache() *memDistanceCache {
	return &memDistanceCache{data: map[string]float64{}}
}

func (c *memDistanceCache) key(profile string, origin domain.Coordinates, dest string) string {
	return profile + "|" + origin.Key() + "|" + dest
}

func (c *memDistanceCache) GetMany(ctx context.Context, profile string, origin domain.Coordinates, destinations []domain.Coordinates) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]float64{}
	for _, d := range destinations {
		if v, ok := c.data[c.key(profile, origin, d.Key())]; ok {
			out[d.Key()] = v
		}
	}
	return out, nil
}

func (c *memDistanceCache) PutMany(ctx context.Context, profile string, origin domain.Coordinates, meters map[string]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range meters {
		c.data[c.key(profile, origin, k)] = v
	}
	return nil
}

type memGeocodeCache struct {
	data map[string]domain.Coordinates
}

func (c *memGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if v, ok := c.data[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memGeocodeCache) PutMany(ctx context.Context, entries map[string]domain.Coordinates) error {
	for k, v := range entries {
		c.data[k] = v
	}
	return nil
}

func TestCachedMatrixProvider_FetchesOnlyMissingRows(t *testing.T) {
	locs := []domain.Coordinates{{Lon: 76.0, Lat: 30.0}, {Lon: 76.1, Lat: 30.1}, {Lon: 76.2, Lat: 30.2}}
	mock := NewMockMatrixProvider([][]float64{
		{0, 10, 20},
		{11, 0, 30},
		{21, 31, 0},
	})
	cache := newMemDistanceCache()
	cached := NewCachedMatrixProvider(mock, cache)

	rows, err := cached.DistanceRows(context.Background(), locs, []int{0, 1}, DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 10, 20}, {11, 0, 30}}, rows)
	assert.Equal(t, [][]int{{0, 1}}, mock.Batches())

	rows, err = cached.DistanceRows(context.Background(), locs, []int{0, 1, 2}, DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 10, 20}, {11, 0, 30}, {21, 31, 0}}, rows)
	assert.Equal(t, [][]int{{0, 1}, {2}}, mock.Batches(), "rows 0 and 1 must come from the cache")

	// Another profile shares nothing.
	_, err = cached.DistanceRows(context.Background(), locs, []int{0}, "foot-walking")
	require.NoError(t, err)
	assert.Len(t, mock.Batches(), 3)
}

func TestCachedMatrixProvider_PropagatesProviderError(t *testing.T) {
	mock := NewMockMatrixProvider(nil)
	mock.Err = errors.New("upstream down")

	_, err := NewCachedMatrixProvider(mock, newMemDistanceCache()).
		DistanceRows(context.Background(), []domain.Coordinates{{Lon: 1, Lat: 1}}, []int{0}, DefaultProfile)
	require.ErrorContains(t, err, "upstream down")
}

func TestCachedGeocoder(t *testing.T) {
	mock := NewMockGeocoder(map[string]domain.Coordinates{
		"1 School Lane": {Lon: 76.3647, Lat: 30.3565},
	})
	cache := &memGeocodeCache{data: map[string]domain.Coordinates{}}
	g := NewCachedGeocoder(mock, cache)

	for i := 0; i < 3; i++ {
		c, err := g.Resolve(context.Background(), " 1  School Lane ")
		require.NoError(t, err)
		assert.Equal(t, 30.3565, c.Lat)
	}
	assert.Equal(t, 1, mock.Calls("1 School Lane"))

	_, err := g.Resolve(context.Background(), "unknown")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = g.Resolve(context.Background(), "unknown")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, mock.Calls("unknown"), "failures are not cached")
}

func TestHaversineProvider(t *testing.T) {
	locs := []domain.Coordinates{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}, {Lon: 1, Lat: 0}}
	rows, err := NewHaversineProvider(1).DistanceRows(context.Background(), locs, []int{0, 1, 2}, DefaultProfile)
	require.NoError(t, err)

	for i := range locs {
		assert.Zero(t, rows[i][i])
		for j := range locs {
			assert.InDelta(t, rows[i][j], rows[j][i], 1e-6)
		}
	}
	// One degree of latitude is about 111.19 km.
	assert.InDelta(t, 111195, rows[0][1], 50)

	scaled, err := NewHaversineProvider(1.3).DistanceRows(context.Background(), locs, []int{0}, DefaultProfile)
	require.NoError(t, err)
	assert.InDelta(t, rows[0][1]*1.3, scaled[0][1], 1e-6)

	_, err = NewHaversineProvider(1).DistanceRows(context.Background(), locs, []int{3}, DefaultProfile)
	require.Error(t, err)
}
