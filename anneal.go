package placecraft

import (
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/MaxHalford/eaopt"
)

// AnnealParams configures the simulated-annealing polish solver.
type AnnealParams struct {
	Generations uint   // number of annealing generations, >= 1
	AcceptWorse string // cooling policy: always, never, drop-slow, linear, drop-fast
	Seed        int64  // -1 samples the system clock

	Console io.Writer // improvement reports, nil disables
}

// DefaultAnnealParams returns the recommended parameters.
func DefaultAnnealParams() AnnealParams {
	return AnnealParams{
		Generations: 2000,
		AcceptWorse: "drop-slow",
		Seed:        -1,
	}
}

// getAcceptFunc returns an acceptance function for simulated annealing
// based on the chosen policy.
func getAcceptFunc(acceptWorse string) (func(g, ng uint, e0, e1 float64) float64, error) {
	switch acceptWorse {
	case "always":
		return func(g, ng uint, e0, e1 float64) float64 { return 1.0 }, nil
	case "never":
		return func(g, ng uint, e0, e1 float64) float64 { return 0.0 }, nil
	case "drop-slow":
		return func(g, ng uint, e0, e1 float64) float64 {
			t := 1.0 - float64(g)/float64(ng)
			return (1.0 - math.Cos(t*math.Pi)) / 2.0
		}, nil
	case "linear":
		return func(g, ng uint, e0, e1 float64) float64 {
			t := 1.0 - float64(g)/float64(ng)
			return t
		}, nil
	case "drop-fast":
		return func(g, ng uint, e0, e1 float64) float64 {
			t := 1.0 - float64(g)/float64(ng)
			return math.Exp(-3.0 * (1 - t))
		}, nil
	default:
		return nil, fmt.Errorf("%w: accept_worse=%q", ErrInvalidParameter, acceptWorse)
	}
}

// permGenome adapts a placement permutation to the eaopt.Genome interface.
type permGenome struct {
	t    *CostTensor
	perm []int
}

// Evaluate returns the QAP cost as the fitness to minimize.
func (g *permGenome) Evaluate() (float64, error) {
	return float64(g.t.Cost(g.perm)), nil
}

// Mutate randomly swaps the slots of two devices.
func (g *permGenome) Mutate(rng *rand.Rand) {
	n := len(g.perm)
	if n < 2 {
		return
	}
	i := rng.Intn(n)
	j := rng.Intn(n)
	for j == i {
		j = rng.Intn(n)
	}
	g.perm[i], g.perm[j] = g.perm[j], g.perm[i]
}

// Crossover does nothing. It is defined only so *permGenome implements the
// eaopt.Genome interface; annealing never mates genomes.
func (g *permGenome) Crossover(_ eaopt.Genome, _ *rand.Rand) {}

// Clone returns a copy of the genome.
func (g *permGenome) Clone() eaopt.Genome {
	p := make([]int, len(g.perm))
	copy(p, g.perm)
	return &permGenome{t: g.t, perm: p}
}

// AnnealSolver polishes placements with simulated annealing over the swap
// neighborhood, driven by the eaopt harness.
type AnnealSolver struct {
	t      *CostTensor
	params AnnealParams
	accept func(g, ng uint, e0, e1 float64) float64
}

// NewAnnealSolver validates the configuration and the cost tensor.
func NewAnnealSolver(t *CostTensor, params AnnealParams) (*AnnealSolver, error) {
	if params.Generations < 1 {
		return nil, fmt.Errorf("%w: generations=%d", ErrInvalidParameter, params.Generations)
	}
	accept, err := getAcceptFunc(params.AcceptWorse)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &AnnealSolver{t: t, params: params, accept: accept}, nil
}

// Solve runs the annealing and returns the best permutation found.
func (s *AnnealSolver) Solve() ([]int, error) {
	rng := newRNG(s.params.Seed)

	// Configure the simulated annealing algorithm.
	cfg := eaopt.NewDefaultGAConfig()
	cfg.NGenerations = s.params.Generations
	cfg.RNG = rng
	cfg.Model = eaopt.ModSimulatedAnnealing{
		Accept: s.accept,
	}

	// Report only when the incumbent improves.
	minFit := math.MaxFloat64
	cfg.Callback = func(ga *eaopt.GA) {
		if s.params.Console == nil {
			return
		}
		hof0 := ga.HallOfFame[0]
		if hof0.Fitness == minFit {
			return
		}
		MustFprintf(s.params.Console, "Best cost at generation %d: %.0f\n",
			ga.Generations, hof0.Fitness)
		minFit = hof0.Fitness
	}

	ga, err := cfg.NewGA()
	if err != nil {
		return nil, err
	}

	newGenome := func(rng *rand.Rand) eaopt.Genome {
		return &permGenome{t: s.t, perm: randPerm(rng, s.t.N())}
	}
	if err := ga.Minimize(newGenome); err != nil {
		return nil, err
	}

	best := ga.HallOfFame[0].Genome.(*permGenome)
	ret := make([]int, len(best.perm))
	copy(ret, best.perm)
	return ret, nil
}
