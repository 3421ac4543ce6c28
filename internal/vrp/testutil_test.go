package vrp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"bus-route-service/internal/domain"
)

func mustMatrix(t *testing.T, rows [][]int) *domain.DistanceMatrix {
	t.Helper()
	m, err := domain.NewDistanceMatrix(rows)
	require.NoError(t, err)
	return m
}

func mustModel(t *testing.T, rows [][]int, capacities []int) *Model {
	t.Helper()
	m, err := NewModel(mustMatrix(t, rows), UniformDemands(len(rows)), capacities)
	require.NoError(t, err)
	return m
}

// lineMatrix places nodes on a line and uses |xi - xj| as cost.
func lineMatrix(xs []int) [][]int {
	rows := make([][]int, len(xs))
	for i := range xs {
		rows[i] = make([]int, len(xs))
		for j := range xs {
			d := xs[i] - xs[j]
			if d < 0 {
				d = -d
			}
			rows[i][j] = d
		}
	}
	return rows
}

// randomInstance builds an asymmetric instance with enough total capacity.
func randomInstance(t *testing.T, seed int64, stops, vehicles int) *Model {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	n := stops + 1

	rows := make([][]int, n)
	for i := range rows {
		rows[i] = make([]int, n)
		for j := range rows[i] {
			if i != j {
				rows[i][j] = 100 + rng.Intn(5000)
			}
		}
	}

	caps := make([]int, vehicles)
	total := 0
	for total < stops {
		for v := range caps {
			extra := 1 + rng.Intn(3)
			caps[v] += extra
			total += extra
		}
	}

	return mustModel(t, rows, caps)
}

// bruteForceSingleRoute returns the cheapest depot->...->depot ordering.
func bruteForceSingleRoute(m *Model) int {
	stops := make([]int, 0, m.NodeCount()-1)
	for s := 1; s < m.NodeCount(); s++ {
		stops = append(stops, s)
	}

	best := -1
	var permute func(k int)
	permute = func(k int) {
		if k == len(stops) {
			nodes := append(append([]int{0}, stops...), 0)
			c := m.Matrix().PathCost(nodes)
			if best < 0 || c < best {
				best = c
			}
			return
		}
		for i := k; i < len(stops); i++ {
			stops[k], stops[i] = stops[i], stops[k]
			permute(k + 1)
			stops[k], stops[i] = stops[i], stops[k]
		}
	}
	permute(0)
	return best
}

func routeSet(r domain.Route) map[int]bool {
	out := map[int]bool{}
	for _, s := range r.Stops() {
		out[s] = true
	}
	return out
}
