package placecraft

// Solution pairs a permutation with its cost value. Solvers treat the
// permutation device-indexed: device i is placed at slot perm[i].
type Solution struct {
	perm []int
	cost int64
}

func newSolution(perm []int, cost int64) *Solution {
	return &Solution{perm: perm, cost: cost}
}

// clone returns a deep copy.
func (s *Solution) clone() *Solution {
	p := make([]int, len(s.perm))
	copy(p, s.perm)
	return &Solution{perm: p, cost: s.cost}
}

// copyFrom overwrites this solution with other's contents.
func (s *Solution) copyFrom(other *Solution) {
	if len(s.perm) != len(other.perm) {
		s.perm = make([]int, len(other.perm))
	}
	copy(s.perm, other.perm)
	s.cost = other.cost
}

// SolutionFactory recycles solution values between invocations so the hot
// loops do not allocate per candidate. create hands out an instance from
// the free stack (or a fresh one), freeLast returns the most recent
// handout, freeAll bulk-returns everything currently owned.
type SolutionFactory struct {
	n     int
	owned []*Solution
	freed []*Solution
}

// NewSolutionFactory returns a factory producing solutions of length n.
func NewSolutionFactory(n int) *SolutionFactory {
	return &SolutionFactory{n: n}
}

func (f *SolutionFactory) create(perm []int, cost int64) *Solution {
	var s *Solution
	if len(f.freed) > 0 {
		s = f.freed[len(f.freed)-1]
		f.freed = f.freed[:len(f.freed)-1]
	} else {
		s = &Solution{perm: make([]int, f.n)}
	}
	copy(s.perm, perm)
	s.cost = cost
	f.owned = append(f.owned, s)
	return s
}

func (f *SolutionFactory) freeLast() {
	last := f.owned[len(f.owned)-1]
	f.owned = f.owned[:len(f.owned)-1]
	f.freed = append(f.freed, last)
}

func (f *SolutionFactory) freeAll() {
	f.freed = append(f.freed, f.owned...)
	f.owned = f.owned[:0]
}

// List is a bounded-capacity set of solution pointers with a tracked worst
// element. Window advances re-home the backing slice; elements are never
// deep-copied on a move.
type List struct {
	a     []*Solution
	worst int // index of the max-cost element, -1 when empty
	cap   int
}

// NewList returns an empty list of capacity k.
func NewList(k int) *List {
	return &List{a: make([]*Solution, 0, k), worst: -1, cap: k}
}

func (l *List) len() int {
	return len(l.a)
}

// add appends without a capacity check and keeps the worst index current.
func (l *List) add(s *Solution) {
	l.a = append(l.a, s)
	if l.worst == -1 || l.a[l.worst].cost < s.cost {
		l.worst = len(l.a) - 1
	}
}

func (l *List) clear() {
	l.a = l.a[:0]
	l.worst = -1
}

// insert places s into the list. A duplicate (identical cost and identical
// permutation) is rejected and insert reports false. Below capacity the
// solution is appended; at capacity it overwrites the worst element and
// the worst index is re-established by a linear scan.
func (l *List) insert(s *Solution) bool {
	for _, cur := range l.a {
		if cur.cost == s.cost && Hamming(cur.perm, s.perm) == 0 {
			return false
		}
	}

	if len(l.a) < l.cap {
		l.add(s)
		return true
	}

	l.a[l.worst] = s
	for i, cur := range l.a {
		if l.a[l.worst].cost < cur.cost {
			l.worst = i
		}
	}
	return true
}

// best returns the minimum-cost element. The list must be non-empty.
func (l *List) best() *Solution {
	b := 0
	for i := 1; i < len(l.a); i++ {
		if l.a[b].cost > l.a[i].cost {
			b = i
		}
	}
	return l.a[b]
}

// moveFrom re-homes other's backing array into l and leaves other as a
// fresh empty list of the same capacity. Elements are not copied.
func (l *List) moveFrom(other *List) {
	l.a = other.a
	l.worst = other.worst
	l.cap = other.cap
	other.a = make([]*Solution, 0, other.cap)
	other.worst = -1
}
