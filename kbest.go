package placecraft

import "container/heap"

// sumPair indexes one element of each sorted input slice.
type sumPair struct {
	i, j int
}

// sumHeap is a min-heap of index pairs ordered by x[i]+y[j].
type sumHeap struct {
	x, y  []int64
	pairs []sumPair
}

func (h *sumHeap) Len() int { return len(h.pairs) }

func (h *sumHeap) Less(a, b int) bool {
	pa, pb := h.pairs[a], h.pairs[b]
	return h.x[pa.i]+h.y[pa.j] < h.x[pb.i]+h.y[pb.j]
}

func (h *sumHeap) Swap(a, b int) {
	h.pairs[a], h.pairs[b] = h.pairs[b], h.pairs[a]
}

func (h *sumHeap) Push(v any) {
	h.pairs = append(h.pairs, v.(sumPair))
}

func (h *sumHeap) Pop() any {
	last := h.pairs[len(h.pairs)-1]
	h.pairs = h.pairs[:len(h.pairs)-1]
	return last
}

// bestKSums writes into ansI/ansJ the index pairs of the k smallest sums
// x[i]+y[j] in ascending order. Both inputs must be sorted ascending and
// k must not exceed len(x)*len(y). Runs in O((len(x)+k) log len(x)).
func bestKSums(x, y []int64, ansI, ansJ []int, k int) {
	h := &sumHeap{x: x, y: y, pairs: make([]sumPair, 0, len(x)+k)}
	for i := range x {
		h.pairs = append(h.pairs, sumPair{i, 0})
	}
	heap.Init(h)

	for iter := 0; iter < k; iter++ {
		p := heap.Pop(h).(sumPair)
		ansI[iter] = p.i
		ansJ[iter] = p.j
		if p.j+1 < len(y) {
			heap.Push(h, sumPair{p.i, p.j + 1})
		}
	}
}
