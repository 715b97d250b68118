package placecraft

import (
	"math/rand"
)

// randomTensor builds a valid QAP instance as the product of a symmetric
// zero-diagonal flow matrix and a symmetric zero-diagonal distance matrix,
// with entries in [0, maxVal).
func randomTensor(rng *rand.Rand, n int, maxVal int64) *CostTensor {
	flow := make([][]int64, n)
	dist := make([][]int64, n)
	for i := range flow {
		flow[i] = make([]int64, n)
		dist[i] = make([]int64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			f := rng.Int63n(maxVal)
			d := rng.Int63n(maxVal)
			flow[i][j], flow[j][i] = f, f
			dist[i][j], dist[j][i] = d, d
		}
	}

	t := NewCostTensor(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					if k == l {
						continue
					}
					t.Set(i, j, k, l, flow[i][j]*dist[k][l])
				}
			}
		}
	}
	return t
}

// forcedOrderingTensor is the n=3 scenario where only the pair (0,1)
// carries cost |k-l|; the optimum places devices 0 and 1 adjacent.
func forcedOrderingTensor() *CostTensor {
	t := NewCostTensor(3)
	for k := 0; k < 3; k++ {
		for l := 0; l < 3; l++ {
			if k == l {
				continue
			}
			d := int64(k - l)
			if d < 0 {
				d = -d
			}
			t.Set(0, 1, k, l, d)
			t.Set(1, 0, l, k, d)
		}
	}
	return t
}

// forEachPermutation invokes fn with every permutation of {0,...,n-1}.
func forEachPermutation(n int, fn func(perm []int)) {
	perm := identityPerm(n)
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			fn(perm)
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0)
}

// bruteForceOptimum returns the minimum tensor cost over all permutations.
func bruteForceOptimum(t *CostTensor) int64 {
	best := int64(0)
	first := true
	forEachPermutation(t.N(), func(perm []int) {
		c := t.Cost(perm)
		if first || c < best {
			best = c
			first = false
		}
	})
	return best
}

// isPermutation reports whether perm is a bijection on {0,...,len-1}.
func isPermutation(perm []int) bool {
	seen := make([]bool, len(perm))
	for _, v := range perm {
		if v < 0 || v >= len(perm) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// randomTestLayout builds a layout for a rows x cols grid: one device per
// slot, a few pins per device with small offsets, and netCount nets of
// 2-4 random pins each.
func randomTestLayout(rng *rand.Rand, rows, cols, netCount int) *Layout {
	n := rows * cols
	layout := &Layout{}
	for d := 0; d < n; d++ {
		layout.Devices = append(layout.Devices, Device{ID: d, HalfWidth: 5, HalfHeight: 5})
		pins := 1 + rng.Intn(3)
		for p := 0; p < pins; p++ {
			layout.Pins = append(layout.Pins, Pin{
				Device: d,
				Offset: Point{X: rng.Intn(11) - 5, Y: rng.Intn(11) - 5},
			})
		}
	}
	for i := 0; i < netCount; i++ {
		size := 2 + rng.Intn(3)
		net := Net{}
		for j := 0; j < size; j++ {
			net.Pins = append(net.Pins, rng.Intn(len(layout.Pins)))
		}
		layout.Nets = append(layout.Nets, net)
	}
	return layout
}
