package placecraft

import (
	"fmt"
	"io"
)

// DreznerParams configures the list-descent solver.
type DreznerParams struct {
	K int // capacity of each rolling list, >= 1

	Time          float64 // wall-clock budget in seconds, Unbounded disables
	MaxIters      int     // outer iteration cap when Time is Unbounded
	Seed          int64   // -1 samples the system clock
	DebugInterval float64 // best-so-far snapshot interval in seconds, -1 disables

	Console io.Writer // human-readable progress, nil disables
	LogFile io.Writer // JSONL structured progress, nil disables
}

// DefaultDreznerParams returns the recommended parameters.
func DefaultDreznerParams() DreznerParams {
	return DreznerParams{
		K:             2,
		Time:          1,
		MaxIters:      Unbounded,
		Seed:          -1,
		DebugInterval: Unbounded,
	}
}

// DreznerSolver runs an iterated neighborhood search over three rolling
// lists of good permutations bounded by Hamming distance to the incumbent,
// after Z. Drezner's heuristic for the QAP.
type DreznerSolver struct {
	t      *CostTensor
	params DreznerParams

	d       int // per-iteration target distance
	factory *SolutionFactory
	logger  *ProgressLogger
}

// NewDreznerSolver validates the configuration and the cost tensor.
func NewDreznerSolver(t *CostTensor, params DreznerParams) (*DreznerSolver, error) {
	if params.K < 1 {
		return nil, fmt.Errorf("%w: K=%d", ErrInvalidParameter, params.K)
	}
	if err := validateBudget(params.Time, params.MaxIters); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &DreznerSolver{
		t:       t,
		params:  params,
		factory: NewSolutionFactory(t.N()),
	}, nil
}

// Trace returns the best-so-far snapshots recorded during the last Solve.
func (s *DreznerSolver) Trace() []TraceRecord {
	if s.logger == nil {
		return nil
	}
	return s.logger.Records()
}

// Solve runs the search and returns the best permutation found.
func (s *DreznerSolver) Solve() ([]int, error) {
	n := s.t.N()
	rng := newRNG(s.params.Seed)
	s.logger = NewProgressLogger(s.params.Console, s.params.LogFile, s.params.DebugInterval)
	s.logger.LogStart("drezner", s.params.Seed, s.params.Time)

	p := randPerm(rng, n)
	center := newSolution(p, s.t.Cost(p))
	bfs := center.clone()

	if n < 2 {
		s.logger.Finalize(bfs.perm)
		s.logger.LogEnd(0, bfs.cost)
		return bfs.perm, nil
	}

	b := startBudget(s.params.Time, s.params.MaxIters)
	s.logger.Snapshot(bfs.perm)

	c := 0
	iter := 0
	for !b.expired(iter) {
		// Target distance uniform in {n-4, n-3, n-2}, clamped positive.
		s.d = n - randInt(rng, 2, 4)
		if s.d <= 0 {
			s.d = 1
		}

		bfs2, bfs3, memory := s.qapIter(center, b)

		if bfs2.cost < bfs.cost {
			c = 0
			bfs = bfs2
			s.logger.LogImprovement(iter, bfs.cost)
		}
		c++
		iter++

		s.logger.Snapshot(bfs.perm)

		if c == 1 || c == 3 {
			if memory.len() > 0 {
				center = memory.best().clone()
			} else {
				center = bfs.clone()
			}
		} else if c == 2 || c == 4 {
			if bfs3 == nil {
				break
			}
			center = bfs3
		} else {
			break
		}
	}

	s.logger.Finalize(bfs.perm)
	s.logger.LogEnd(iter, bfs.cost)
	s.factory.freeAll()

	ret := make([]int, n)
	copy(ret, bfs.perm)
	return ret, nil
}

// qapIter runs one descent pass anchored at center: it returns the best
// solution seen (bfs), the second-best (nil if none was produced before
// the budget expired), and the final distance window as memory.
func (s *DreznerSolver) qapIter(center *Solution, b *budget) (*Solution, *Solution, *List) {
	dp := 0 // Hamming distance between the window and bfs

	list0 := NewList(s.params.K) // best K permutations at distance dp
	list1 := NewList(s.params.K) // at distance dp+1
	list2 := NewList(s.params.K) // at distance dp+2
	memory := NewList(s.params.K)

	list0.add(center)
	bfs := center.clone()
	var second *Solution

	for dp <= s.d {
		if b.timeUp() {
			break
		}

		prev := bfs.cost
		second = s.newBfs(list0, bfs, second, b)

		if prev != bfs.cost {
			list1.clear()
			list2.clear()
			dp = 0
		}

		s.updLists(list0, list1, list2, bfs)

		memory.moveFrom(list0)

		if list1.len() == 0 {
			list0.moveFrom(list2)
			dp++
		} else {
			list0.moveFrom(list1)
			list1.moveFrom(list2)
		}
		dp++
	}

	return bfs, second, memory
}

// newBfs sweeps every pairwise swap of every window element. A strict
// improvement replaces bfs, restarts the sweep from {bfs}, and clears the
// outer windows via the caller's distance reset; otherwise the best
// non-improving candidate is tracked as the second-best.
func (s *DreznerSolver) newBfs(list0 *List, bfs, second *Solution, b *budget) *Solution {
	n := s.t.N()
	for {
		if b.timeUp() {
			break
		}

		found := false
		for _, cur := range list0.a {
			for j := 0; j+1 < n; j++ {
				for k := j + 1; k < n; k++ {
					obvW := s.t.SwapDelta(cur.perm, j, k) + cur.cost

					if obvW < bfs.cost {
						bfs.copyFrom(cur)
						bfs.perm[j], bfs.perm[k] = bfs.perm[k], bfs.perm[j]
						bfs.cost = obvW
						found = true
					} else if second == nil || obvW < second.cost {
						if second == nil {
							second = &Solution{perm: make([]int, n)}
						}
						second.copyFrom(cur)
						second.perm[j], second.perm[k] = second.perm[k], second.perm[j]
						second.cost = obvW
					}
				}
			}
		}

		if !found {
			break
		}
		list0.clear()
		list0.add(bfs)
	}
	return second
}

// updLists forms every swap of every window element that moves away from
// bfs and routes it into the distance dp+1 or dp+2 window. Rejected
// duplicates are returned to the factory immediately.
func (s *DreznerSolver) updLists(list0, list1, list2 *List, bfs *Solution) {
	n := s.t.N()
	for _, cur := range list0.a {
		for j := 0; j+1 < n; j++ {
			for k := j + 1; k < n; k++ {
				dw := HammingDelta(cur.perm, bfs.perm, j, k)
				if dw <= 0 {
					continue
				}

				cand := s.factory.create(cur.perm, s.t.SwapDelta(cur.perm, j, k)+cur.cost)
				cand.perm[j], cand.perm[k] = cand.perm[k], cand.perm[j]

				owned := false
				if dw == 1 {
					owned = list1.insert(cand)
				} else {
					owned = list2.insert(cand)
				}
				if !owned {
					s.factory.freeLast()
				}
			}
		}
	}
}
