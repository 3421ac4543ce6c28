package vrp

import (
	"context"
	"errors"
	"time"
)

const (
	// checkEvery is how many move evaluations pass between deadline polls.
	checkEvery = 256
	// improvementEps absorbs float noise in augmented deltas.
	improvementEps = 1e-6
)

type arc struct{ from, to int }

// search is the IMPROVE phase state: the current plan, the best plan by true
// cost, and the guided local search penalties over directed arcs.
type search struct {
	ctx      context.Context
	m        *Model
	n        int
	deadline time.Time

	cur      *plan
	curCost  int
	best     *plan
	bestCost int

	penalties  []int // penalties[from*n+to]
	lambda     float64
	factor     float64
	maxEscapes int

	termination Termination
	stats       Stats
}

func newSearch(ctx context.Context, m *Model, initial *plan, deadline time.Time, opts Options) *search {
	n := m.NodeCount()
	c := initial.cost(m)
	return &search{
		ctx:        ctx,
		m:          m,
		n:          n,
		deadline:   deadline,
		cur:        initial,
		curCost:    c,
		best:       initial.clone(),
		bestCost:   c,
		penalties:  make([]int, n*n),
		factor:     opts.PenaltyFactor,
		maxEscapes: opts.MaxEscapes,
	}
}

// aug is the augmented arc cost driving acceptance.
func (s *search) aug(from, to int) float64 {
	c := float64(s.m.Cost(from, to))
	if s.lambda == 0 {
		return c
	}
	return c + s.lambda*float64(s.penalties[from*s.n+to])
}

// interrupted reports whether the search must stop now and records why.
func (s *search) interrupted() bool {
	if s.termination != "" {
		return true
	}
	if err := s.ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.termination = TerminationTimeBudget
		} else {
			s.termination = TerminationCancelled
		}
		return true
	}
	if !time.Now().Before(s.deadline) {
		s.termination = TerminationTimeBudget
		return true
	}
	return false
}

// tick counts one move evaluation and polls for interruption every
// checkEvery evaluations.
func (s *search) tick() bool {
	s.stats.Evaluations++
	if s.stats.Evaluations%checkEvery != 0 {
		return false
	}
	return s.interrupted()
}

func (s *search) run() {
	if s.interrupted() {
		return
	}

	for {
		s.stats.Passes++
		evalsBefore := s.stats.Evaluations

		s.descend()
		if s.termination != "" {
			return
		}

		// No legal move exists at all; penalties cannot change that.
		if s.stats.Evaluations == evalsBefore {
			s.termination = TerminationConverged
			return
		}

		if !s.escape() {
			s.termination = TerminationConverged
			return
		}
	}
}

// descend applies first-improvement moves until none improves the augmented
// cost or the search is interrupted.
func (s *search) descend() {
	for {
		if s.twoOpt() || s.relocate() || s.exchange() {
			s.stats.Moves++
			continue
		}
		return
	}
}

// commit books the true cost change of an applied move.
func (s *search) commit(before, after int) {
	s.curCost += after - before
	if s.curCost < s.bestCost {
		s.bestCost = s.curCost
		s.best = s.cur.clone()
		s.stats.Improvements++
	}
}

// twoOpt reverses a segment r[i..j] of a single route. Costs are directional,
// so the delta includes every inner arc flipping direction.
func (s *search) twoOpt() bool {
	for v, r := range s.cur.routes {
		k := len(r)
		for i := 1; i < k-2; i++ {
			rev := 0.0
			for j := i + 1; j < k-1; j++ {
				rev += s.aug(r[j], r[j-1]) - s.aug(r[j-1], r[j])
				delta := s.aug(r[i-1], r[j]) + s.aug(r[i], r[j+1]) -
					s.aug(r[i-1], r[i]) - s.aug(r[j], r[j+1]) + rev

				if s.tick() {
					return false
				}
				if delta < -improvementEps {
					before := s.cur.routeCost(s.m, v)
					reverse(r[i : j+1])
					s.commit(before, s.cur.routeCost(s.m, v))
					return true
				}
			}
		}
	}
	return false
}

// relocate moves one stop from its route into any gap of another route with
// enough residual capacity, empty routes included.
func (s *search) relocate() bool {
	routes := s.cur.routes
	for a := range routes {
		ra := routes[a]
		for p := 1; p < len(ra)-1; p++ {
			x := ra[p]
			prev, next := ra[p-1], ra[p+1]
			gain := s.aug(prev, x) + s.aug(x, next) - s.aug(prev, next)
			d := s.m.Demand(x)

			for b := range routes {
				if b == a || s.cur.loads[b]+d > s.m.Capacity(b) {
					continue
				}

				rb := routes[b]
				for q := 1; q < len(rb); q++ {
					u, w := rb[q-1], rb[q]
					delta := s.aug(u, x) + s.aug(x, w) - s.aug(u, w) - gain

					if s.tick() {
						return false
					}
					if delta < -improvementEps {
						before := s.cur.routeCost(s.m, a) + s.cur.routeCost(s.m, b)
						routes[a] = removeAt(ra, p)
						routes[b] = insertAt(rb, q, x)
						s.cur.loads[a] -= d
						s.cur.loads[b] += d
						s.commit(before, s.cur.routeCost(s.m, a)+s.cur.routeCost(s.m, b))
						return true
					}
				}
			}
		}
	}
	return false
}

// exchange swaps two stops between different routes when both routes stay
// within capacity.
func (s *search) exchange() bool {
	routes := s.cur.routes
	for a := range routes {
		for b := a + 1; b < len(routes); b++ {
			ra, rb := routes[a], routes[b]
			for p := 1; p < len(ra)-1; p++ {
				x := ra[p]
				pa, na := ra[p-1], ra[p+1]
				dx := s.m.Demand(x)
				outX := s.aug(pa, x) + s.aug(x, na)

				for q := 1; q < len(rb)-1; q++ {
					y := rb[q]
					dy := s.m.Demand(y)
					if s.cur.loads[a]-dx+dy > s.m.Capacity(a) || s.cur.loads[b]-dy+dx > s.m.Capacity(b) {
						continue
					}

					pb, nb := rb[q-1], rb[q+1]
					delta := s.aug(pa, y) + s.aug(y, na) - outX +
						s.aug(pb, x) + s.aug(x, nb) - s.aug(pb, y) - s.aug(y, nb)

					if s.tick() {
						return false
					}
					if delta < -improvementEps {
						before := s.cur.routeCost(s.m, a) + s.cur.routeCost(s.m, b)
						ra[p], rb[q] = y, x
						s.cur.loads[a] += dy - dx
						s.cur.loads[b] += dx - dy
						s.commit(before, s.cur.routeCost(s.m, a)+s.cur.routeCost(s.m, b))
						return true
					}
				}
			}
		}
	}
	return false
}

// escape penalises the arcs of the current local optimum with maximal
// utility cost/(1+penalty). It reports false when no escape is attempted.
func (s *search) escape() bool {
	if s.maxEscapes >= 0 && s.stats.Escapes >= s.maxEscapes {
		return false
	}

	var arcs []arc
	for _, r := range s.cur.routes {
		if len(r) <= 2 {
			continue
		}
		for k := 0; k+1 < len(r); k++ {
			arcs = append(arcs, arc{from: r[k], to: r[k+1]})
		}
	}
	if len(arcs) == 0 {
		return false
	}

	if s.lambda == 0 {
		s.lambda = s.factor * float64(s.curCost) / float64(len(arcs))
		if s.lambda <= 0 {
			return false
		}
	}

	// Utilities are compared by cross-multiplication to stay in integers.
	var top []arc
	topCost, topPenalty := 0, 0
	for _, a := range arcs {
		c := s.m.Cost(a.from, a.to)
		if c == 0 {
			continue
		}
		p := s.penalties[a.from*s.n+a.to]

		cmp := c*(1+topPenalty) - topCost*(1+p)
		switch {
		case len(top) == 0 || cmp > 0:
			top = append(top[:0], a)
			topCost, topPenalty = c, p
		case cmp == 0:
			top = append(top, a)
		}
	}
	if len(top) == 0 {
		return false
	}

	for _, a := range top {
		s.penalties[a.from*s.n+a.to]++
	}
	s.stats.Escapes++
	return true
}
