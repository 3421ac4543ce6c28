package vrp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEscape_PenalisesMaxUtilityArcs(t *testing.T) {
	rows := [][]int{
		{0, 10, 99},
		{99, 0, 4},
		{10, 99, 0},
	}
	m := mustModel(t, rows, []int{2})
	p := newPlan(1)
	p.routes[0] = []int{0, 1, 2, 0}
	p.loads[0] = 2

	s := newSearch(context.Background(), m, p, time.Now().Add(time.Minute), DefaultOptions())
	require.Equal(t, 24, s.curCost)

	pen := func(from, to int) int { return s.penalties[from*s.n+to] }

	// Both 10-cost arcs tie on utility 10.
	require.True(t, s.escape())
	require.InDelta(t, 0.8, s.lambda, 1e-9)
	require.Equal(t, 1, pen(0, 1))
	require.Equal(t, 1, pen(2, 0))
	require.Equal(t, 0, pen(1, 2))

	// 10/2 = 5 still beats 4/1.
	require.True(t, s.escape())
	require.Equal(t, 2, pen(0, 1))
	require.Equal(t, 0, pen(1, 2))

	// 10/3 < 4/1, so the short arc is finally penalised.
	require.True(t, s.escape())
	require.Equal(t, 2, pen(0, 1))
	require.Equal(t, 1, pen(1, 2))
	require.Equal(t, 3, s.stats.Escapes)
}

func TestEscape_StopsAtLimit(t *testing.T) {
	m := mustModel(t, lineMatrix([]int{0, 3, 5}), []int{2})
	p := newPlan(1)
	p.routes[0] = []int{0, 1, 2, 0}
	p.loads[0] = 2

	opts := DefaultOptions()
	opts.MaxEscapes = 2
	s := newSearch(context.Background(), m, p, time.Now().Add(time.Minute), opts)

	require.True(t, s.escape())
	require.True(t, s.escape())
	require.False(t, s.escape())
}

func TestTwoOpt_HandlesDirectionalCosts(t *testing.T) {
	// Every arc of 0->1->2->0 costs 50 while its reverse costs 1.
	rows := [][]int{
		{0, 50, 1},
		{1, 0, 50},
		{50, 1, 0},
	}
	m := mustModel(t, rows, []int{2})
	p := newPlan(1)
	p.routes[0] = []int{0, 1, 2, 0}
	p.loads[0] = 2

	s := newSearch(context.Background(), m, p, time.Now().Add(time.Minute), DefaultOptions())
	require.Equal(t, 150, s.curCost)

	s.descend()
	require.Equal(t, []int{0, 2, 1, 0}, s.cur.routes[0])
	require.Equal(t, 3, s.curCost)
	require.Equal(t, 3, s.bestCost)
	require.Equal(t, 1, s.stats.Improvements)
}

func TestSearch_TracksTrueCost(t *testing.T) {
	m := randomInstance(t, 11, 18, 3)

	initial, err := construct(context.Background(), m)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.MaxEscapes = 50
	s := newSearch(context.Background(), m, initial, time.Now().Add(5*time.Second), opts)
	s.run()

	require.Equal(t, s.cur.cost(m), s.curCost)
	require.Equal(t, s.best.cost(m), s.bestCost)
	require.LessOrEqual(t, s.bestCost, s.curCost)
	for v := range s.cur.routes {
		load := 0
		for _, node := range s.cur.routes[v][1 : len(s.cur.routes[v])-1] {
			load += m.Demand(node)
		}
		require.Equal(t, load, s.cur.loads[v])
		require.LessOrEqual(t, load, m.Capacity(v))
	}
}
