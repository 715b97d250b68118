package placecraft

// SeparableCost is the decomposition of the pairwise placement cost into
// x-only and y-only additive components, used by the Goto solvers. For an
// ordered device pair (i,j) the x term is
//
//	w[i,j]·|xi−xj| + {sameX if xi==xj, leftX if xi<xj, rightX otherwise}
//
// and analogously in y with sameY/downY/upY. rightX is the transpose of
// leftX and downY the transpose of upY, so the total over unordered pairs
// is symmetric.
type SeparableCost struct {
	n int // devices

	leftX  []int64
	sameX  []int64
	rightX []int64

	upY   []int64
	sameY []int64
	downY []int64

	w []int64
}

// NewSeparableCost builds the separable representation for the layout.
// The same LCM scaling as the tensor form keeps all terms exact integers.
func NewSeparableCost(layout *Layout, grid Grid) (*SeparableCost, error) {
	if err := layout.Validate(grid); err != nil {
		return nil, err
	}
	lcm, err := netScale(layout.Nets)
	if err != nil {
		return nil, err
	}

	n := len(layout.Devices)
	sc := &SeparableCost{
		n:      n,
		leftX:  make([]int64, n*n),
		sameX:  make([]int64, n*n),
		rightX: make([]int64, n*n),
		upY:    make([]int64, n*n),
		sameY:  make([]int64, n*n),
		downY:  make([]int64, n*n),
		w:      make([]int64, n*n),
	}

	for _, net := range layout.Nets {
		size := len(net.Pins)
		if size <= 1 {
			continue
		}
		coef := lcm / int64(size-1)
		for _, pa := range net.Pins {
			a := layout.Pins[pa]
			for _, pb := range net.Pins {
				b := layout.Pins[pb]
				if a.Device == b.Device {
					continue
				}
				q := sc.idx(a.Device, b.Device)

				sc.w[q] += coef

				sc.sameX[q] += coef * abs64(int64(a.Offset.X-b.Offset.X))
				sc.sameY[q] += coef * abs64(int64(a.Offset.Y-b.Offset.Y))

				// Pin term when a's device sits strictly left of b's
				// (smaller x), and when it sits strictly up (larger y).
				sc.leftX[q] += coef * int64(-a.Offset.X+b.Offset.X)
				sc.upY[q] += coef * int64(a.Offset.Y-b.Offset.Y)
			}
		}
	}

	// Mirror halves: i right of j is j left of i.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sc.rightX[sc.idx(i, j)] = sc.leftX[sc.idx(j, i)]
			sc.downY[sc.idx(i, j)] = sc.upY[sc.idx(j, i)]
		}
	}

	return sc, nil
}

// N returns the number of devices.
func (sc *SeparableCost) N() int {
	return sc.n
}

func (sc *SeparableCost) idx(i, j int) int {
	return i*sc.n + j
}

func (sc *SeparableCost) contribX(i, j, xi, xj int) int64 {
	q := sc.idx(i, j)
	ret := sc.w[q] * abs64(int64(xi-xj))
	switch {
	case xi == xj:
		ret += sc.sameX[q]
	case xi < xj:
		ret += sc.leftX[q]
	default:
		ret += sc.rightX[q]
	}
	return ret
}

func (sc *SeparableCost) contribY(i, j, yi, yj int) int64 {
	q := sc.idx(i, j)
	ret := sc.w[q] * abs64(int64(yi-yj))
	switch {
	case yi == yj:
		ret += sc.sameY[q]
	case yi < yj:
		ret += sc.downY[q]
	default:
		ret += sc.upY[q]
	}
	return ret
}

func (sc *SeparableCost) contribXY(i, j, xi, xj, yi, yj int) int64 {
	return sc.contribX(i, j, xi, xj) + sc.contribY(i, j, yi, yj)
}
