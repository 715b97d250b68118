package placecraft

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
)

// gotoSolution carries the permutation in both directions plus the total
// wire length: device i sits at slot perm[i], slot s holds device rev[s].
// The pooled variant additionally keeps the priority vector that derived
// the permutation.
type gotoSolution struct {
	perm  []int
	rev   []int
	prior []float64
	twl   int64
}

// gotoCore holds the separable cost, the grid geometry and all scratch
// buffers shared by the GFDR machinery of the Goto solvers.
type gotoCore struct {
	sc   *SeparableCost
	grid Grid

	devices int // equals the slot count
	rows    int
	cols    int

	lambdaMax int
	eps       int

	locX []int // x coordinate of each slot
	locY []int // y coordinate of each slot

	// Median scratch: prefix difference arrays and their evaluations, per
	// axis, plus the slot orderings and the selected candidate slots.
	prefSX, prefWX []int64 // size cols
	prefSY, prefWY []int64 // size rows
	valsX          []int64
	valsY          []int64
	helpI          []int // columns ordered by valsX
	helpJ          []int // rows ordered by valsY
	tmpI, tmpJ     []int // size eps
	medianNeib     []int // eps candidate slots, best first
	medianVals     []int64

	sols       []*gotoSolution // eps saved chain states
	totalDelta []int64
}

func (c *gotoCore) init(sc *SeparableCost, grid Grid, lambdaMax, eps int, withPrior bool) error {
	if sc.N() != grid.Slots() {
		return fmt.Errorf("%w: %d devices on a %dx%d grid", ErrInvalidShape, sc.N(), grid.Rows, grid.Cols)
	}
	if err := grid.validate(); err != nil {
		return err
	}
	if lambdaMax < 2 {
		return fmt.Errorf("%w: lambda_max=%d", ErrInvalidParameter, lambdaMax)
	}
	if eps < 1 {
		return fmt.Errorf("%w: eps=%d", ErrInvalidParameter, eps)
	}

	c.sc = sc
	c.grid = grid
	c.devices = sc.N()
	c.rows = grid.Rows
	c.cols = grid.Cols
	c.lambdaMax = lambdaMax
	c.eps = min(eps, c.devices)

	c.locX = make([]int, c.devices)
	c.locY = make([]int, c.devices)
	for s := 0; s < c.devices; s++ {
		c.locX[s] = grid.SlotX(s)
		c.locY[s] = grid.SlotY(s)
	}

	c.prefSX = make([]int64, c.cols)
	c.prefWX = make([]int64, c.cols)
	c.prefSY = make([]int64, c.rows)
	c.prefWY = make([]int64, c.rows)
	c.valsX = make([]int64, c.cols)
	c.valsY = make([]int64, c.rows)
	c.helpI = make([]int, c.cols)
	c.helpJ = make([]int, c.rows)
	c.tmpI = make([]int, c.eps)
	c.tmpJ = make([]int, c.eps)
	c.medianNeib = make([]int, c.eps)
	c.medianVals = make([]int64, c.eps)

	c.sols = make([]*gotoSolution, c.eps)
	for i := range c.sols {
		c.sols[i] = c.newSolution(withPrior)
	}
	c.totalDelta = make([]int64, c.eps)

	return nil
}

func (c *gotoCore) newSolution(withPrior bool) *gotoSolution {
	s := &gotoSolution{
		perm: make([]int, c.devices),
		rev:  make([]int, c.devices),
	}
	if withPrior {
		s.prior = make([]float64, c.devices)
	}
	return s
}

func (c *gotoCore) copySol(from, to *gotoSolution) {
	copy(to.perm, from.perm)
	copy(to.rev, from.rev)
	if to.prior != nil && from.prior != nil {
		copy(to.prior, from.prior)
	}
	to.twl = from.twl
}

// contribSlots is the pairwise cost of device i at slot pi and device j at
// slot pj.
func (c *gotoCore) contribSlots(i, j, pi, pj int) int64 {
	if i == j {
		return 0
	}
	return c.sc.contribXY(i, j, c.locX[pi], c.locX[pj], c.locY[pi], c.locY[pj])
}

// calcTWL evaluates the total wire length of the placement from scratch.
func (c *gotoCore) calcTWL(sol *gotoSolution) int64 {
	var twl int64
	for i := 0; i < c.devices; i++ {
		for j := i + 1; j < c.devices; j++ {
			twl += c.contribSlots(i, j, sol.perm[i], sol.perm[j])
		}
	}
	return twl
}

// swap exchanges the slots of devices i and j, keeping both directions and
// the cached wire length in sync.
func (c *gotoCore) swap(sol *gotoSolution, i, j int, twlDelta int64) {
	sol.twl += twlDelta
	sol.rev[sol.perm[i]], sol.rev[sol.perm[j]] = sol.rev[sol.perm[j]], sol.rev[sol.perm[i]]
	sol.perm[i], sol.perm[j] = sol.perm[j], sol.perm[i]
}

// delta is the exact wire-length change of swapping devices i and j. O(n).
func (c *gotoCore) delta(sol *gotoSolution, i, j int) int64 {
	if i == j {
		return 0
	}
	var ret int64
	pi := sol.perm[i]
	pj := sol.perm[j]
	for q := 0; q < c.devices; q++ {
		if q == i || q == j {
			continue
		}
		pq := sol.perm[q]
		ret += c.contribSlots(i, q, pj, pq) - c.contribSlots(i, q, pi, pq) +
			c.contribSlots(j, q, pi, pq) - c.contribSlots(j, q, pj, pq)
	}
	ret += c.contribSlots(i, j, pj, pi) - c.contribSlots(i, j, pi, pj)
	return ret
}

// getVals turns the prefix difference arrays into per-position scores:
// vals[i] = i·step·Σ_{j<=i} prefW[j] + Σ_{j<=i} prefS[j].
func getVals(vals []int64, step int, prefW, prefS []int64) {
	var sumW, sumS int64
	for i := range vals {
		sumW += prefW[i]
		sumS += prefS[i]
		vals[i] = int64(i*step)*sumW + sumS
	}
}

// getMedian fills medianNeib/medianVals with the eps slots of smallest
// first-order cost for placing the device while all others stay fixed.
// The cost is separable, so each axis is scored with a prefix structure in
// O(n) and the best slot pairs come from a k-best-sum heap. O(n log n).
func (c *gotoCore) getMedian(sol *gotoSolution, device int) {
	clear(c.prefSX)
	clear(c.prefSY)
	clear(c.prefWX)
	clear(c.prefWY)

	for i := 0; i < c.devices; i++ {
		if i == device {
			continue
		}

		q := c.sc.idx(device, i)
		curW := c.sc.w[q]

		xi := sol.perm[i] % c.cols
		yi := sol.perm[i] / c.cols

		c.prefWX[0] -= curW
		c.prefWX[xi] += curW
		if xi+1 < c.cols {
			c.prefWX[xi+1] += curW
		}

		c.prefSX[0] += int64(c.grid.StepX*xi)*curW + c.sc.leftX[q]
		c.prefSX[xi] += -int64(c.grid.StepX*xi)*curW - c.sc.leftX[q] + c.sc.sameX[q]
		if xi+1 < c.cols {
			c.prefSX[xi+1] += -int64(c.grid.StepX*xi)*curW - c.sc.sameX[q] + c.sc.rightX[q]
		}

		c.prefWY[0] -= curW
		c.prefWY[yi] += curW
		if yi+1 < c.rows {
			c.prefWY[yi+1] += curW
		}

		c.prefSY[0] += int64(c.grid.StepY*yi)*curW + c.sc.downY[q]
		c.prefSY[yi] += -int64(c.grid.StepY*yi)*curW - c.sc.downY[q] + c.sc.sameY[q]
		if yi+1 < c.rows {
			c.prefSY[yi+1] += -int64(c.grid.StepY*yi)*curW - c.sc.sameY[q] + c.sc.upY[q]
		}
	}

	getVals(c.valsX, c.grid.StepX, c.prefWX, c.prefSX)
	getVals(c.valsY, c.grid.StepY, c.prefWY, c.prefSY)

	for i := range c.helpI {
		c.helpI[i] = i
	}
	sort.Slice(c.helpI, func(a, b int) bool {
		return c.valsX[c.helpI[a]] < c.valsX[c.helpI[b]]
	})

	for i := range c.helpJ {
		c.helpJ[i] = i
	}
	sort.Slice(c.helpJ, func(a, b int) bool {
		return c.valsY[c.helpJ[a]] < c.valsY[c.helpJ[b]]
	})

	sort.Slice(c.valsX, func(a, b int) bool { return c.valsX[a] < c.valsX[b] })
	sort.Slice(c.valsY, func(a, b int) bool { return c.valsY[a] < c.valsY[b] })

	bestKSums(c.valsX, c.valsY, c.tmpI, c.tmpJ, c.eps)

	for q := 0; q < c.eps; q++ {
		col := c.helpI[c.tmpI[q]]
		row := c.helpJ[c.tmpJ[q]]
		c.medianNeib[q] = row*c.cols + col
		c.medianVals[q] = c.valsX[c.tmpI[q]] + c.valsY[c.tmpJ[q]]
	}
}

// getMedianNaive is the O(n²) reference for getMedian: it scores every
// slot directly and picks the eps cheapest. Kept for differential testing;
// the two must agree numerically.
func (c *gotoCore) getMedianNaive(sol *gotoSolution, device int) {
	contr := make([]int64, c.devices)
	for slot := 0; slot < c.devices; slot++ {
		for d := 0; d < c.devices; d++ {
			if d != device {
				contr[slot] += c.contribSlots(device, d, slot, sol.perm[d])
			}
		}
	}

	order := identityPerm(c.devices)
	sort.Slice(order, func(a, b int) bool {
		return contr[order[a]] < contr[order[b]]
	})

	for q := 0; q < c.eps; q++ {
		c.medianNeib[q] = order[q]
		c.medianVals[q] = contr[order[q]]
	}
}

// gfdr attempts an improving move for the device. The single best-slot
// swap is tried first; failing that, eps chains diverge at the q-th best
// slot and follow the best median slot for up to lambdaMax steps, the
// first chain with negative cumulative delta being accepted.
func (c *gotoCore) gfdr(sol *gotoSolution, device int) bool {
	c.getMedian(sol, device)

	opt := sol.rev[c.medianNeib[0]]
	if d := c.delta(sol, device, opt); d < 0 {
		c.swap(sol, device, opt, d)
		return true
	}

	if c.lambdaMax == 2 {
		return false
	}

	for q := 0; q < c.eps; q++ {
		c.copySol(sol, c.sols[q])

		swapDev := sol.rev[c.medianNeib[q]]
		d := c.delta(sol, device, swapDev)

		c.swap(c.sols[q], device, swapDev, d)
		c.totalDelta[q] = d
	}

	for lambda := 3; lambda <= c.lambdaMax; lambda++ {
		for q := 0; q < c.eps; q++ {
			c.getMedian(c.sols[q], device)

			swapDev := c.sols[q].rev[c.medianNeib[0]]
			d := c.delta(c.sols[q], device, swapDev)

			c.swap(c.sols[q], device, swapDev, d)
			c.totalDelta[q] += d

			if c.totalDelta[q] < 0 {
				c.copySol(c.sols[q], sol)
				return true
			}
		}
	}

	return false
}

// GotoParams configures the restart-driven force-directed solver.
type GotoParams struct {
	LambdaMax int // chain depth, >= 2
	Eps       int // candidate slots per GFDR pass, >= 1 (clamped to n)

	Time          float64 // wall-clock budget in seconds, Unbounded disables
	MaxIters      int     // restart cap when Time is Unbounded
	Seed          int64   // -1 samples the system clock
	DebugInterval float64 // snapshot interval in seconds, -1 disables

	Console io.Writer
	LogFile io.Writer
}

// DefaultGotoParams returns the recommended parameters.
func DefaultGotoParams() GotoParams {
	return GotoParams{
		LambdaMax:     4,
		Eps:           4,
		Time:          1,
		MaxIters:      Unbounded,
		Seed:          -1,
		DebugInterval: Unbounded,
	}
}

// GotoSolver repeatedly builds a stochastic greedy placement (SORG) and
// relaxes every device with GFDR, keeping the best placement seen.
type GotoSolver struct {
	core   gotoCore
	params GotoParams

	best   *gotoSolution
	rng    *rand.Rand
	logger *ProgressLogger
}

// NewGotoSolver validates the configuration and the separable cost.
func NewGotoSolver(sc *SeparableCost, grid Grid, params GotoParams) (*GotoSolver, error) {
	if err := validateBudget(params.Time, params.MaxIters); err != nil {
		return nil, err
	}
	s := &GotoSolver{params: params}
	if err := s.core.init(sc, grid, params.LambdaMax, params.Eps, false); err != nil {
		return nil, err
	}
	return s, nil
}

// Trace returns the best-so-far snapshots recorded during the last Solve.
func (s *GotoSolver) Trace() []TraceRecord {
	if s.logger == nil {
		return nil
	}
	return s.logger.Records()
}

// Solve runs restarts until the budget expires and returns the best
// permutation found.
func (s *GotoSolver) Solve() ([]int, error) {
	c := &s.core
	s.rng = newRNG(s.params.Seed)
	s.logger = NewProgressLogger(s.params.Console, s.params.LogFile, s.params.DebugInterval)
	s.logger.LogStart("goto", s.params.Seed, s.params.Time)

	s.best = c.newSolution(false)
	copy(s.best.perm, identityPerm(c.devices))
	copy(s.best.rev, s.best.perm)
	s.best.twl = c.calcTWL(s.best)

	b := startBudget(s.params.Time, s.params.MaxIters)
	s.logger.Snapshot(s.best.perm)

	iter := 0
	for !b.expired(iter) {
		s.logger.Snapshot(s.best.perm)

		initial := s.sorg()
		for d := 0; d < c.devices; d++ {
			c.gfdr(initial, d)
			if initial.twl < s.best.twl {
				c.copySol(initial, s.best)
				s.logger.LogImprovement(iter, s.best.twl)
			}
		}
		iter++
	}

	s.logger.Finalize(s.best.perm)
	s.logger.LogEnd(iter, s.best.twl)

	ret := make([]int, c.devices)
	copy(ret, s.best.perm)
	return ret, nil
}

// sorg builds a placement greedily: repeatedly take one of the two
// unplaced devices with the largest interconnection-order count (the
// second-best on a coin flip) and put it on the untaken slot of minimum
// incremental cost against the devices already placed.
func (s *GotoSolver) sorg() *gotoSolution {
	c := &s.core
	n := c.devices

	isPlaced := make([]bool, n)
	isTaken := make([]bool, n)

	ioc := make([]int64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				ioc[i] -= c.sc.w[c.sc.idx(i, j)]
			}
		}
	}

	sol := c.newSolution(false)

	for i := 0; i < n; i++ {
		dev1, dev2 := -1, -1
		for j := 0; j < n; j++ {
			if isPlaced[j] {
				continue
			}
			if dev1 == -1 {
				dev1 = j
				continue
			}
			if ioc[j] > ioc[dev1] {
				dev2 = dev1
				dev1 = j
			} else if dev2 == -1 || ioc[j] >= ioc[dev2] {
				dev2 = j
			}
		}

		dev := dev1
		if dev2 != -1 && s.rng.Intn(2) == 1 {
			dev = dev2
		}

		slot := -1
		var bestCost int64
		for j := 0; j < n; j++ {
			if isTaken[j] {
				continue
			}
			var cost int64
			for d := 0; d < n; d++ {
				if !isPlaced[d] {
					continue
				}
				cost += c.contribSlots(d, dev, sol.perm[d], j)
			}
			if slot == -1 || cost < bestCost {
				slot = j
				bestCost = cost
			}
		}

		isPlaced[dev] = true
		isTaken[slot] = true
		sol.perm[dev] = slot
		sol.rev[slot] = dev

		for j := 0; j < n; j++ {
			if j != dev {
				ioc[j] += c.sc.w[c.sc.idx(dev, j)]
			}
		}
	}

	sol.twl = c.calcTWL(sol)
	return sol
}
