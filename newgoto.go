package placecraft

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
)

// NewGotoParams configures the pooled force-directed solver.
type NewGotoParams struct {
	N1, N2    int // CES jump bounds, 1 <= n1 <= n2 <= n (clamped to n)
	S         int // pool size, >= 1
	Z         int // elite percentage in (0, 100]
	LambdaMax int // GFDR chain depth, >= 2
	Eps       int // candidate slots per GFDR pass, >= 1 (clamped to n)

	Time          float64 // wall-clock budget in seconds, Unbounded disables
	MaxIters      int     // main loop cap when Time is Unbounded
	Seed          int64   // -1 samples the system clock
	DebugInterval float64 // snapshot interval in seconds, -1 disables

	Console io.Writer
	LogFile io.Writer
}

// DefaultNewGotoParams returns the recommended parameters.
func DefaultNewGotoParams() NewGotoParams {
	return NewGotoParams{
		N1:            2,
		N2:            7,
		S:             100,
		Z:             10,
		LambdaMax:     4,
		Eps:           4,
		Time:          1,
		MaxIters:      Unbounded,
		Seed:          -1,
		DebugInterval: Unbounded,
	}
}

// NewGotoSolverState drives the same GFDR relaxation as GotoSolver through the
// pool scheme of the tabu solver: S priority-vectored placements, CES
// sweeps on elite members, and GARK recombination.
type NewGotoSolverState struct {
	core   gotoCore
	params NewGotoParams

	n1, n2 int
	top    int

	M    []*gotoSolution
	best *gotoSolution

	idxBuf  []int
	idxBufS []int

	rng    *rand.Rand
	logger *ProgressLogger
}

// NewNewGotoSolver validates the configuration and the separable cost.
func NewNewGotoSolver(sc *SeparableCost, grid Grid, params NewGotoParams) (*NewGotoSolverState, error) {
	n := sc.N()
	n2 := min(params.N2, n)
	n1 := min(params.N1, n2)
	if params.N1 > params.N2 || n1 < 1 || n1 > n2 {
		return nil, fmt.Errorf("%w: n1=%d, n2=%d", ErrInvalidParameter, params.N1, params.N2)
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

	s := &NewGotoSolverState{
		params: params,
		n1:     n1,
		n2:     n2,
		top:    (params.Z*params.S + 99) / 100,
	}
	if err := s.core.init(sc, grid, params.LambdaMax, params.Eps, true); err != nil {
		return nil, err
	}
	return s, nil
}

// Trace returns the best-so-far snapshots recorded during the last Solve.
func (s *NewGotoSolverState) Trace() []TraceRecord {
	if s.logger == nil {
		return nil
	}
	return s.logger.Records()
}

// Solve runs the pooled search and returns the best permutation found.
func (s *NewGotoSolverState) Solve() ([]int, error) {
	c := &s.core
	s.rng = newRNG(s.params.Seed)
	s.logger = NewProgressLogger(s.params.Console, s.params.LogFile, s.params.DebugInterval)
	s.logger.LogStart("new_goto", s.params.Seed, s.params.Time)

	s.M = make([]*gotoSolution, s.params.S+2)
	for i := range s.M {
		s.M[i] = c.newSolution(true)
	}
	s.best = c.newSolution(true)
	s.idxBuf = identityPerm(c.devices)
	s.idxBufS = identityPerm(s.params.S)

	b := startBudget(s.params.Time, s.params.MaxIters)

	s.genPool()
	s.logger.Snapshot(s.best.perm)

	iter := 0
	lastBest := s.best.twl
	for !b.expired(iter) {
		s.sortPool(s.params.S)
		s.updBest()

		s.logger.Snapshot(s.best.perm)

		L := s.rng.Intn(s.top)
		s.ces(s.M[L], b)
		s.sortPool(s.params.S)

		s.gark(randInt(s.rng, 1, 3), 5)

		if s.best.twl < lastBest {
			s.logger.LogImprovement(iter, s.best.twl)
			lastBest = s.best.twl
		}
		iter++
	}

	s.sortPool(s.params.S)
	s.updBest()

	s.logger.Finalize(s.best.perm)
	s.logger.LogEnd(iter, s.best.twl)

	ret := make([]int, c.devices)
	copy(ret, s.best.perm)
	return ret, nil
}

func (s *NewGotoSolverState) genPool() {
	for i := 0; i < s.params.S; i++ {
		s.randSol(s.M[i])
	}
	s.core.copySol(s.M[0], s.best)
	s.sortPool(s.params.S)
	s.updBest()
}

func (s *NewGotoSolverState) randSol(sol *gotoSolution) {
	for i := range sol.prior {
		sol.prior[i] = s.rng.Float64()
	}
	s.derivePerm(sol)
}

// derivePerm ranks devices by ascending priority (index tie-break) into
// rev and inverts into perm, so both directions stay consistent.
func (s *NewGotoSolverState) derivePerm(sol *gotoSolution) {
	for i := range sol.rev {
		sol.rev[i] = i
	}
	sort.Slice(sol.rev, func(a, b int) bool {
		ra, rb := sol.rev[a], sol.rev[b]
		if sol.prior[ra] != sol.prior[rb] {
			return sol.prior[ra] < sol.prior[rb]
		}
		return ra < rb
	})
	for i, dev := range sol.rev {
		sol.perm[dev] = i
	}
	sol.twl = s.core.calcTWL(sol)
}

// ces is the critical-event sweep of the pooled variant: one GFDR pass
// over all devices per horizon step, then a p-cycle jump.
func (s *NewGotoSolverState) ces(sol *gotoSolution, b *budget) {
	c := &s.core
	for k := s.n1; k <= s.n2; k++ {
		if b.timeUp() {
			return
		}

		for device := 0; device < c.devices; device++ {
			c.gfdr(sol, device)
			if sol.twl < s.best.twl {
				c.copySol(sol, s.best)
			}
		}

		p := randInt(s.rng, s.n1, k)
		s.jump(sol, p)

		if sol.twl < s.best.twl {
			c.copySol(sol, s.best)
		}
	}
}

// jump rotates p randomly chosen devices through a chain of p-1 swaps and
// recomputes the wire length from scratch.
func (s *NewGotoSolverState) jump(sol *gotoSolution, p int) {
	c := &s.core
	s.rng.Shuffle(c.devices, func(i, j int) {
		s.idxBuf[i], s.idxBuf[j] = s.idxBuf[j], s.idxBuf[i]
	})
	for i := 0; i+1 < p; i++ {
		a, bdev := s.idxBuf[i], s.idxBuf[i+1]
		c.swap(sol, a, bdev, 0)
		sol.prior[a], sol.prior[bdev] = sol.prior[bdev], sol.prior[a]
	}
	sol.twl = c.calcTWL(sol)
}

// localSearch runs up to iters GFDR sweeps over all devices.
func (s *NewGotoSolverState) localSearch(sol *gotoSolution, iters int) {
	c := &s.core
	for it := 0; it < iters; it++ {
		moved := false
		for device := 0; device < c.devices; device++ {
			if c.gfdr(sol, device) {
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	if sol.twl < s.best.twl {
		c.copySol(sol, s.best)
	}
}

// gark dispatches one recombination variant and runs the bounded GFDR
// local search on the produced children.
func (s *NewGotoSolverState) gark(variant, lsIters int) {
	c := &s.core
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
		for i := 0; i < c.devices; i++ {
			if s.rng.Intn(2) == 1 {
				s.M[S].prior[i] = a.prior[i]
				s.M[S+1].prior[i] = b.prior[i]
			} else {
				s.M[S].prior[i] = b.prior[i]
				s.M[S+1].prior[i] = a.prior[i]
			}
		}
		s.derivePerm(s.M[S])
		s.derivePerm(s.M[S+1])
		s.localSearch(s.M[S], lsIters)
		s.localSearch(s.M[S+1], lsIters)
		sortPrefix = S + 2
	case 3: // centroid of an elite subset
		cnt := min(randInt(s.rng, garkBufMin, garkBufMax), S)
		sort.Ints(s.idxBufS)
		s.rng.Shuffle(s.top, func(i, j int) {
			s.idxBufS[i], s.idxBufS[j] = s.idxBufS[j], s.idxBufS[i]
		})
		for i := 0; i < c.devices; i++ {
			sum := 0.0
			for p := 0; p < cnt; p++ {
				sum += s.M[s.idxBufS[p]].prior[i]
			}
			s.M[S].prior[i] = sum / float64(cnt)
		}
		s.derivePerm(s.M[S])
		s.localSearch(s.M[S], lsIters)
		sortPrefix = S + 1
	}

	if sortPrefix > 0 {
		s.sortPool(sortPrefix)
	}
}

func (s *NewGotoSolverState) sortPool(prefix int) {
	sort.Slice(s.M[:prefix], func(a, b int) bool {
		return s.M[a].twl < s.M[b].twl
	})
}

func (s *NewGotoSolverState) updBest() {
	if s.M[0].twl < s.best.twl {
		s.core.copySol(s.M[0], s.best)
	}
}
