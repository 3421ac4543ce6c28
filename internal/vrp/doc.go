// Package vrp solves the capacitated vehicle routing problem for a single
// depot.
//
// A Model holds the travel-cost matrix, the per-node demand vector and the
// per-vehicle capacity vector. An Engine turns a Model into a Solution in
// four phases:
//
//  1. INIT: the model is validated; aggregate demand above aggregate
//     capacity fails fast with domain.ErrCapacityInfeasible.
//  2. CONSTRUCT: cheapest-arc insertion. Every vehicle opens a depot->depot
//     route and the (stop, route, position) triple with the lowest marginal
//     cost is inserted until no stop is left. Ties resolve to the lowest stop
//     index, then route index, then position, so construction is fully
//     deterministic. A stop that fits no route fails with domain.ErrNoSolution.
//  3. IMPROVE: guided local search. Intra-route 2-opt, inter-route relocate
//     and inter-route exchange moves are evaluated against arc costs
//     augmented with lambda * penalty. At every local optimum the arcs with
//     the highest utility cost/(1+penalty) are penalised, which pushes the
//     search out of the optimum. The best solution by true cost is recorded
//     independently of the augmented objective.
//  4. TERMINATE: the time budget elapsed, the context was cancelled, or a
//     descent finished with no escape left to attempt. The best recorded
//     solution is always the one returned.
//
// Costs are directional. Route distance is the sum of consecutive arcs, and
// 2-opt deltas include the cost change of the reversed inner arcs.
package vrp
