package placecraft

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func dreznerTestParams(seed int64) DreznerParams {
	p := DefaultDreznerParams()
	p.Time = Unbounded
	p.MaxIters = 200
	p.Seed = seed
	return p
}

func TestDreznerValidation(t *testing.T) {
	ct := randomTensor(rand.New(rand.NewSource(1)), 4, 100)

	t.Run("bad K", func(t *testing.T) {
		p := dreznerTestParams(1)
		p.K = 0
		if _, err := NewDreznerSolver(ct, p); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("no budget", func(t *testing.T) {
		p := DefaultDreznerParams()
		p.Time = Unbounded
		p.MaxIters = Unbounded
		if _, err := NewDreznerSolver(ct, p); !errors.Is(err, ErrBudgetUnspecified) {
			t.Fatalf("expected ErrBudgetUnspecified, got %v", err)
		}
	})

	t.Run("asymmetric tensor", func(t *testing.T) {
		bad := randomTensor(rand.New(rand.NewSource(2)), 4, 100)
		bad.Set(0, 1, 2, 3, bad.At(0, 1, 2, 3)+1)
		if _, err := NewDreznerSolver(bad, dreznerTestParams(1)); !errors.Is(err, ErrCostNotSymmetric) {
			t.Fatalf("expected ErrCostNotSymmetric, got %v", err)
		}
	})
}

func TestDreznerTrivialZero(t *testing.T) {
	ct := NewCostTensor(4)
	s, err := NewDreznerSolver(ct, dreznerTestParams(5))
	if err != nil {
		t.Fatal(err)
	}

	perm, err := s.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if !isPermutation(perm) {
		t.Fatalf("not a permutation: %v", perm)
	}
	if got := ct.Cost(perm); got != 0 {
		t.Fatalf("cost = %d, want 0", got)
	}
}

func TestDreznerForcedOrdering(t *testing.T) {
	ct := forcedOrderingTensor()
	s, err := NewDreznerSolver(ct, dreznerTestParams(9))
	if err != nil {
		t.Fatal(err)
	}

	perm, err := s.Solve()
	if err != nil {
		t.Fatal(err)
	}
	if got := ct.Cost(perm); got != 1 {
		t.Fatalf("cost = %d, want 1 (devices 0 and 1 adjacent)", got)
	}
}

// TestDreznerSmallExact recovers the brute-force optimum on random
// instances, re-invoking the solver with fresh seeds the way a driver
// keeps re-solving inside its wall-clock budget.
func TestDreznerSmallExact(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))

	for n := 3; n <= 6; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			for trial := 0; trial < 5; trial++ {
				ct := randomTensor(rng, n, 100)
				want := bruteForceOptimum(ct)

				best := int64(-1)
				for seed := int64(0); seed < 5; seed++ {
					s, err := NewDreznerSolver(ct, dreznerTestParams(seed*77+1))
					if err != nil {
						t.Fatal(err)
					}
					perm, err := s.Solve()
					if err != nil {
						t.Fatal(err)
					}
					if !isPermutation(perm) {
						t.Fatalf("not a permutation: %v", perm)
					}
					if got := ct.Cost(perm); best == -1 || got < best {
						best = got
					}
					if best == want {
						break
					}
				}
				if best != want {
					t.Fatalf("trial %d: best cost %d, brute-force optimum %d", trial, best, want)
				}
			}
		})
	}
}

// TestDreznerMonotoneBest checks the snapshot trace never regresses.
func TestDreznerMonotoneBest(t *testing.T) {
	rng := rand.New(rand.NewSource(55))
	ct := randomTensor(rng, 7, 100)

	p := dreznerTestParams(3)
	p.DebugInterval = 1e-9 // record every snapshot point
	s, err := NewDreznerSolver(ct, p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Solve(); err != nil {
		t.Fatal(err)
	}

	records := s.Trace()
	if len(records) == 0 {
		t.Fatal("expected at least one trace record")
	}
	prev := ct.Cost(records[0].Perm)
	for i, rec := range records[1:] {
		cur := ct.Cost(rec.Perm)
		if cur > prev {
			t.Fatalf("best cost regressed at record %d: %d > %d", i+1, cur, prev)
		}
		prev = cur
	}
}
