package vrp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bus-route-service/internal/domain"
)

// Phase is a state of the engine's lifecycle.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseConstruct
	PhaseImprove
	PhaseTerminate
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseConstruct:
		return "construct"
	case PhaseImprove:
		return "improve"
	case PhaseTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Termination explains why IMPROVE stopped. None of these are errors.
type Termination string

const (
	TerminationConverged  Termination = "converged"
	TerminationTimeBudget Termination = "time_budget_exceeded"
	TerminationCancelled  Termination = "cancelled"
)

type Stats struct {
	Passes          int
	Moves           int
	Escapes         int
	Improvements    int
	Evaluations     int
	InitialDistance int
	Duration        time.Duration
}

type Result struct {
	Solution    domain.Solution
	Termination Termination
	Stats       Stats
}

// Engine runs construction and guided local search over one Model.
// An Engine holds no mutable state between Solve calls.
type Engine struct {
	model *Model
	opts  Options
}

func NewEngine(model *Model, opts Options) (*Engine, error) {
	if model == nil {
		return nil, errors.New("new engine: model is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	return &Engine{model: model, opts: opts}, nil
}

// Solve is a convenience wrapper around NewEngine and Engine.Solve.
func Solve(ctx context.Context, model *Model, opts Options) (*Result, error) {
	e, err := NewEngine(model, opts)
	if err != nil {
		return nil, err
	}
	return e.Solve(ctx)
}

// Solve validates the model, builds an initial solution and improves it until
// a termination condition holds. The returned solution always satisfies every
// capacity and membership invariant; if no such solution exists an error
// wrapping domain.ErrCapacityInfeasible or domain.ErrNoSolution is returned.
func (e *Engine) Solve(ctx context.Context) (*Result, error) {
	start := time.Now()
	deadline := start.Add(e.opts.TimeBudget)

	e.enter(PhaseInit)
	if err := e.model.Validate(); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	e.enter(PhaseConstruct)
	initial, err := construct(ctx, e.model)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	s := newSearch(ctx, e.model, initial, deadline, e.opts)
	s.stats.InitialDistance = s.bestCost

	e.enter(PhaseImprove)
	s.run()

	e.enter(PhaseTerminate)
	sol := s.best.freeze(e.model)
	if err := CheckSolution(e.model, sol); err != nil {
		return nil, fmt.Errorf("solve: best solution failed verification: %w", err)
	}

	s.stats.Duration = time.Since(start)
	log.Printf(
		"vrp: termination=%s distance=%d initial=%d passes=%d moves=%d escapes=%d improvements=%d dur=%dms",
		s.termination, sol.TotalDistance, s.stats.InitialDistance, s.stats.Passes,
		s.stats.Moves, s.stats.Escapes, s.stats.Improvements, s.stats.Duration.Milliseconds(),
	)

	return &Result{
		Solution:    sol,
		Termination: s.termination,
		Stats:       s.stats,
	}, nil
}

func (e *Engine) enter(p Phase) {
	log.Printf("vrp: phase=%s nodes=%d vehicles=%d", p, e.model.NodeCount(), e.model.VehicleCount())
}
