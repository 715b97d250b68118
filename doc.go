// Package placecraft places electrical devices onto a regular row/column
// grid of slots so that a weighted wire-length functional is minimized.
//
// The placement problem reduces to a Quadratic Assignment Problem: a rank-4
// cost tensor C[i,j,k,l] gives the pairwise cost of putting device i at
// slot k and device j at slot l. Three cooperating metaheuristics solve it:
//
//   - DreznerSolver: iterated list descent over three rolling windows of
//     good permutations bounded by Hamming distance to the incumbent.
//   - CETSSolver: critical-event tabu search over a pool of
//     priority-vectored solutions, combined with jump perturbations and
//     GARK recombination operators.
//   - GotoSolver / NewGotoSolverState: force-directed relaxation using a
//     separable x/y decomposition of the cost, with O(n log n) median
//     scoring per device and chained improving swaps.
//
// An AnnealSolver wraps the same cost tensor in a simulated-annealing
// harness for quick polish runs. All solvers are single-threaded, own
// their seeded random stream, honor a wall-clock or iteration budget, and
// report best-so-far snapshots through a ProgressLogger.
package placecraft
