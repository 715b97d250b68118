package placecraft

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
)

// GARK elite-subset bounds for the centroid recombination.
const (
	garkBufMin = 2
	garkBufMax = 5
)

// CETSParams configures the critical-event tabu search solver.
type CETSParams struct {
	N1, N2     int // jump bounds, 1 <= n1 <= n2 <= n (clamped to n)
	TabuTenure int // positive
	S          int // pool size, >= 1
	Z          int // elite percentage in (0, 100]

	Time          float64 // wall-clock budget in seconds, Unbounded disables
	MaxIters      int     // main loop cap when Time is Unbounded
	Seed          int64   // -1 samples the system clock
	DebugInterval float64 // snapshot interval in seconds, -1 disables

	Console io.Writer
	LogFile io.Writer
}

// DefaultCETSParams returns the recommended parameters.
func DefaultCETSParams() CETSParams {
	return CETSParams{
		N1:            2,
		N2:            7,
		TabuTenure:    1,
		S:             100,
		Z:             10,
		Time:          1,
		MaxIters:      Unbounded,
		Seed:          -1,
		DebugInterval: Unbounded,
	}
}

// cetsSol is a pool entry: a priority vector, its derived permutation and
// the exact cost. Recombination operates on the priorities and re-derives
// the permutation; swap moves keep both in sync.
type cetsSol struct {
	prior []float64
	perm  []int
	cost  int64
}

func newCetsSol(n int) *cetsSol {
	return &cetsSol{prior: make([]float64, n), perm: make([]int, n)}
}

func (s *cetsSol) copyFrom(other *cetsSol) {
	copy(s.prior, other.prior)
	copy(s.perm, other.perm)
	s.cost = other.cost
}

// CETSSolver maintains an ordered pool of S priority-vectored solutions,
// improves elite members with critical-event tabu sweeps interleaved with
// cyclic jump perturbations, and recombines with the GARK operators.
type CETSSolver struct {
	t      *CostTensor
	params CETSParams

	n      int
	n1, n2 int
	top    int

	// M has S+2 entries: the working population plus two recombination
	// scratch slots.
	M    []*cetsSol
	best *cetsSol

	// tabu[r*n+s] records the move count when the swap (r,s) was last
	// applied. The structure is maintained as an invariant across the
	// whole CETS horizon; acceptance itself is strict descent.
	tabu      []int
	moveCount int

	idxBuf  []int // scratch device indices for jumps
	idxBufS []int // scratch pool indices for elite sampling
	rank    []int // scratch for priority->permutation ranking

	rng    *rand.Rand
	logger *ProgressLogger
}

// NewCETSSolver validates the configuration and the cost tensor.
func NewCETSSolver(t *CostTensor, params CETSParams) (*CETSSolver, error) {
	n := t.N()
	n2 := min(params.N2, n)
	n1 := min(params.N1, n2)
	if params.N1 > params.N2 || n1 < 1 || n1 > n2 {
		return nil, fmt.Errorf("%w: n1=%d, n2=%d", ErrInvalidParameter, params.N1, params.N2)
	}
	if params.TabuTenure <= 0 {
		return nil, fmt.Errorf("%w: tabu_tenure=%d", ErrInvalidParameter, params.TabuTenure)
	}
	if params.S < 1 {
		return nil, fmt.Errorf("%w: S=%d", ErrInvalidParameter, params.S)
	}
	if params.Z <= 0 || params.Z > 100 {
		return nil, fmt.Errorf("%w: z=%d", ErrInvalidParameter, params.Z)
	}
	if err := validateBudget(params.Time, params.MaxIters); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &CETSSolver{
		t:      t,
		params: params,
		n:      n,
		n1:     n1,
		n2:     n2,
		top:    (params.Z*params.S + 99) / 100,
	}, nil
}

// Trace returns the best-so-far snapshots recorded during the last Solve.
func (s *CETSSolver) Trace() []TraceRecord {
	if s.logger == nil {
		return nil
	}
	return s.logger.Records()
}

// Solve runs the search and returns the best permutation found.
func (s *CETSSolver) Solve() ([]int, error) {
	s.rng = newRNG(s.params.Seed)
	s.logger = NewProgressLogger(s.params.Console, s.params.LogFile, s.params.DebugInterval)
	s.logger.LogStart("cets", s.params.Seed, s.params.Time)

	s.initPool()
	b := startBudget(s.params.Time, s.params.MaxIters)

	s.genPool()
	s.logger.Snapshot(s.best.perm)

	iter := 0
	lastBest := s.best.cost
	for !b.expired(iter) {
		s.sortPool(s.params.S)
		s.updBest()

		// Improve a uniformly chosen elite member, then recombine.
		L := s.rng.Intn(s.top)
		s.cets(s.M[L], b)
		s.sortPool(s.params.S)

		s.gark(randInt(s.rng, 1, 3), 5)

		if s.best.cost < lastBest {
			s.logger.LogImprovement(iter, s.best.cost)
			lastBest = s.best.cost
		}
		s.logger.Snapshot(s.best.perm)
		iter++
	}

	s.sortPool(s.params.S)
	s.updBest()

	s.logger.Finalize(s.best.perm)
	s.logger.LogEnd(iter, s.best.cost)

	ret := make([]int, s.n)
	copy(ret, s.best.perm)
	return ret, nil
}

func (s *CETSSolver) initPool() {
	s.M = make([]*cetsSol, s.params.S+2)
	for i := range s.M {
		s.M[i] = newCetsSol(s.n)
	}
	s.best = newCetsSol(s.n)

	s.tabu = make([]int, s.n*s.n)
	for i := range s.tabu {
		s.tabu[i] = -s.params.TabuTenure
	}
	s.moveCount = 0

	s.idxBuf = identityPerm(s.n)
	s.idxBufS = identityPerm(s.params.S)
	s.rank = make([]int, s.n)
}

func (s *CETSSolver) genPool() {
	for i := 0; i < s.params.S; i++ {
		s.randSol(s.M[i])
	}
	s.best.copyFrom(s.M[0])
	s.sortPool(s.params.S)
	s.updBest()
}

func (s *CETSSolver) randSol(sol *cetsSol) {
	for i := range sol.prior {
		sol.prior[i] = s.rng.Float64()
	}
	s.derivePerm(sol)
}

// derivePerm maps the priority vector to a permutation: device indices are
// ranked by ascending priority with index as the tie-break, and the rank
// of device i becomes perm[i]. Identical priorities always yield the same
// permutation.
func (s *CETSSolver) derivePerm(sol *cetsSol) {
	for i := range s.rank {
		s.rank[i] = i
	}
	sort.Slice(s.rank, func(a, b int) bool {
		ra, rb := s.rank[a], s.rank[b]
		if sol.prior[ra] != sol.prior[rb] {
			return sol.prior[ra] < sol.prior[rb]
		}
		return ra < rb
	})
	for i, dev := range s.rank {
		sol.perm[dev] = i
	}
	sol.cost = s.t.Cost(sol.perm)
}

// exchange applies the swap (r,s) with the precomputed delta and records
// it in the tabu recency matrix.
func (s *CETSSolver) exchange(sol *cetsSol, delta int64, r, c int) {
	sol.perm[r], sol.perm[c] = sol.perm[c], sol.perm[r]
	sol.prior[r], sol.prior[c] = sol.prior[c], sol.prior[r]
	sol.cost += delta

	s.moveCount++
	s.tabu[r*s.n+c] = s.moveCount
	s.tabu[c*s.n+r] = s.moveCount
}

// cets runs the critical-event sweep: for each horizon step a strict
// descent pass over all pairs, then a p-cycle jump with p drawn from
// [n1, k].
func (s *CETSSolver) cets(sol *cetsSol, b *budget) {
	for k := s.n1; k <= s.n2; k++ {
		if b.timeUp() {
			return
		}

		for r := 0; r < s.n; r++ {
			for c := r + 1; c < s.n; c++ {
				d := s.t.SwapDelta(sol.perm, r, c)
				if d < 0 {
					s.exchange(sol, d, r, c)
					if sol.cost < s.best.cost {
						s.best.copyFrom(sol)
					}
				}
			}
		}

		p := randInt(s.rng, s.n1, k)
		s.jump(sol, p)

		if sol.cost < s.best.cost {
			s.best.copyFrom(sol)
		}
	}
}

// jump rotates p randomly chosen positions through a chain of p-1 swaps,
// then recomputes the cost from scratch to avoid drift.
func (s *CETSSolver) jump(sol *cetsSol, p int) {
	s.rng.Shuffle(s.n, func(i, j int) {
		s.idxBuf[i], s.idxBuf[j] = s.idxBuf[j], s.idxBuf[i]
	})
	for i := 0; i+1 < p; i++ {
		s.exchange(sol, 0, s.idxBuf[i], s.idxBuf[i+1])
	}
	sol.cost = s.t.Cost(sol.perm)
}

// localSearch runs up to iters full first-improvement sweeps.
func (s *CETSSolver) localSearch(sol *cetsSol, iters int) {
	for it := 0; it < iters; it++ {
		moved := false
		for r := 0; r < s.n; r++ {
			for c := r + 1; c < s.n; c++ {
				d := s.t.SwapDelta(sol.perm, r, c)
				if d < 0 {
					s.exchange(sol, d, r, c)
					moved = true
				}
			}
		}
		if !moved {
			break
		}
	}

	if sol.cost < s.best.cost {
		s.best.copyFrom(sol)
	}
}

// gark dispatches one recombination variant and runs the short local
// search on the produced children.
func (s *CETSSolver) gark(variant, lsIters int) {
	S := s.params.S
	sortPrefix := 0

	switch variant {
	case 1: // random restart
		s.randSol(s.M[S])
		s.localSearch(s.M[S], lsIters)
		sortPrefix = S + 1
	case 2: // uniform crossover on priorities
		a := s.M[s.rng.Intn(S)]
		b := s.M[s.rng.Intn(S)]
		s.crossover(a, b, s.M[S], s.M[S+1])
		s.localSearch(s.M[S], lsIters)
		s.localSearch(s.M[S+1], lsIters)
		sortPrefix = S + 2
	case 3: // centroid of an elite subset
		cnt := min(randInt(s.rng, garkBufMin, garkBufMax), S)
		sort.Ints(s.idxBufS)
		s.rng.Shuffle(s.top, func(i, j int) {
			s.idxBufS[i], s.idxBufS[j] = s.idxBufS[j], s.idxBufS[i]
		})
		parents := make([]*cetsSol, cnt)
		for i := 0; i < cnt; i++ {
			parents[i] = s.M[s.idxBufS[i]]
		}
		s.centroid(parents, s.M[S])
		s.localSearch(s.M[S], lsIters)
		sortPrefix = S + 1
	}

	if sortPrefix > 0 {
		s.sortPool(sortPrefix)
	}
}

// crossover copies each priority coordinate straight or swapped into the
// two children on a fair coin.
func (s *CETSSolver) crossover(a, b, destA, destB *cetsSol) {
	for i := 0; i < s.n; i++ {
		if s.rng.Intn(2) == 1 {
			destA.prior[i] = a.prior[i]
			destB.prior[i] = b.prior[i]
		} else {
			destA.prior[i] = b.prior[i]
			destB.prior[i] = a.prior[i]
		}
	}
	s.derivePerm(destA)
	s.derivePerm(destB)
}

// centroid averages the parents' priority vectors into dest.
func (s *CETSSolver) centroid(parents []*cetsSol, dest *cetsSol) {
	for i := 0; i < s.n; i++ {
		sum := 0.0
		for _, p := range parents {
			sum += p.prior[i]
		}
		dest.prior[i] = sum / float64(len(parents))
	}
	s.derivePerm(dest)
}

// sortPool orders the first prefix entries ascending by cost.
func (s *CETSSolver) sortPool(prefix int) {
	sort.Slice(s.M[:prefix], func(a, b int) bool {
		return s.M[a].cost < s.M[b].cost
	})
}

func (s *CETSSolver) updBest() {
	if s.M[0].cost < s.best.cost {
		s.best.copyFrom(s.M[0])
	}
}
