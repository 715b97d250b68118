package placecraft

import "fmt"

// CostTensor is the rank-4 QAP cost: At(i, j, k, l) is the pairwise cost
// of placing device i at slot k and device j at slot l. Stored flat, n⁴
// entries of signed 64-bit cost.
//
// Invariants, checked by Validate: At(i,i,·,·) == 0, At(·,·,k,k) == 0, and
// At(i,j,k,l) == At(j,i,l,k).
type CostTensor struct {
	n  int
	n2 int
	n3 int
	c  []int64
}

// NewCostTensor returns a zero tensor for n devices/slots.
func NewCostTensor(n int) *CostTensor {
	return &CostTensor{
		n:  n,
		n2: n * n,
		n3: n * n * n,
		c:  make([]int64, n*n*n*n),
	}
}

// N returns the number of devices (equal to the number of slots).
func (t *CostTensor) N() int {
	return t.n
}

func (t *CostTensor) idx(i, j, k, l int) int {
	return i*t.n3 + j*t.n2 + k*t.n + l
}

// At returns C[i,j,k,l].
func (t *CostTensor) At(i, j, k, l int) int64 {
	return t.c[t.idx(i, j, k, l)]
}

// Set assigns C[i,j,k,l].
func (t *CostTensor) Set(i, j, k, l int, v int64) {
	t.c[t.idx(i, j, k, l)] = v
}

// Add accumulates into C[i,j,k,l].
func (t *CostTensor) Add(i, j, k, l int, v int64) {
	t.c[t.idx(i, j, k, l)] += v
}

// Validate checks the zero-diagonal and joint-swap symmetry invariants.
func (t *CostTensor) Validate() error {
	for i := 0; i < t.n; i++ {
		for j := 0; j < t.n; j++ {
			for k := 0; k < t.n; k++ {
				for l := 0; l < t.n; l++ {
					if t.At(i, i, k, l) != 0 || t.At(i, j, k, k) != 0 {
						return fmt.Errorf("%w: C[%d,%d,%d,%d]", ErrCostNotZeroDiagonal, i, j, k, l)
					}
					if t.At(i, j, k, l) != t.At(j, i, l, k) {
						return fmt.Errorf("%w: C[%d,%d,%d,%d] != C[%d,%d,%d,%d]",
							ErrCostNotSymmetric, i, j, k, l, j, i, l, k)
					}
				}
			}
		}
	}
	return nil
}

// NewCostTensorFromLayout builds the QAP tensor for placing the layout's
// devices on the grid. Each net contributes an integer weight
// LCM/(size−1); for every ordered pair of pins on distinct devices and
// every ordered pair of distinct slots, the manhattan distance between the
// absolute pin positions is accumulated.
func NewCostTensorFromLayout(layout *Layout, grid Grid) (*CostTensor, error) {
	if err := layout.Validate(grid); err != nil {
		return nil, err
	}
	lcm, err := netScale(layout.Nets)
	if err != nil {
		return nil, err
	}

	n := len(layout.Devices)
	t := NewCostTensor(n)

	locX := make([]int, n)
	locY := make([]int, n)
	for s := 0; s < n; s++ {
		locX[s] = grid.SlotX(s)
		locY[s] = grid.SlotY(s)
	}

	for _, net := range layout.Nets {
		size := len(net.Pins)
		if size <= 1 {
			continue
		}
		w := lcm / int64(size-1)
		for _, pa := range net.Pins {
			a := layout.Pins[pa]
			for _, pb := range net.Pins {
				b := layout.Pins[pb]
				if a.Device == b.Device {
					continue
				}
				for p1 := 0; p1 < n; p1++ {
					ax := locX[p1] + a.Offset.X
					ay := locY[p1] + a.Offset.Y
					for p2 := 0; p2 < n; p2++ {
						if p1 == p2 {
							continue
						}
						dx := int64(ax - locX[p2] - b.Offset.X)
						dy := int64(ay - locY[p2] - b.Offset.Y)
						t.Add(a.Device, b.Device, p1, p2, w*(abs64(dx)+abs64(dy)))
					}
				}
			}
		}
	}

	return t, nil
}

// Cost evaluates the permutation: the sum over unordered device pairs of
// C[i,j,π[i],π[j]]. O(n²).
func (t *CostTensor) Cost(perm []int) int64 {
	var ret int64
	for i := 0; i+1 < t.n; i++ {
		for j := i + 1; j < t.n; j++ {
			ret += t.At(i, j, perm[i], perm[j])
		}
	}
	return ret
}

// SwapDelta returns the exact cost change of exchanging perm[r] and
// perm[s], without applying the swap. O(n).
func (t *CostTensor) SwapDelta(perm []int, r, s int) int64 {
	var ret int64
	for i := 0; i < t.n; i++ {
		if i != r && i != s {
			ret += t.At(r, i, perm[s], perm[i]) - t.At(r, i, perm[r], perm[i]) +
				t.At(s, i, perm[r], perm[i]) - t.At(s, i, perm[s], perm[i])
		}
	}
	ret += t.At(s, r, perm[r], perm[s]) - t.At(s, r, perm[s], perm[r])
	return ret
}

// Hamming counts the indices where the two permutations differ.
func Hamming(a, b []int) int {
	ret := 0
	for i := range a {
		if a[i] != b[i] {
			ret++
		}
	}
	return ret
}

// HammingDelta returns the change in Hamming(perm, ref) induced by
// swapping perm[r] and perm[s], a value in {-2,...,2}, in O(1).
func HammingDelta(perm, ref []int, r, s int) int {
	ret := 0
	if perm[r] == ref[r] {
		ret++
	} else if perm[s] == ref[r] {
		ret--
	}
	if perm[s] == ref[s] {
		ret++
	} else if perm[r] == ref[s] {
		ret--
	}
	return ret
}
