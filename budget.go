package placecraft

import (
	"fmt"
	"time"
)

// Unbounded disables a time or iteration limit when passed as the
// corresponding parameter value.
const Unbounded = -1

// validateBudget checks the time/iteration stop criteria at solver
// construction. seconds == Unbounded switches to the iteration cap; both
// unbounded is an error.
func validateBudget(seconds float64, maxIters int) error {
	if seconds == Unbounded && maxIters == Unbounded {
		return ErrBudgetUnspecified
	}
	if seconds != Unbounded && seconds <= 0 {
		return fmt.Errorf("%w: time %v", ErrInvalidParameter, seconds)
	}
	if seconds == Unbounded && maxIters <= 0 {
		return fmt.Errorf("%w: max iters %d", ErrInvalidParameter, maxIters)
	}
	return nil
}

// budget is the shared stop criterion: a wall-clock deadline when a time
// limit is set, otherwise an iteration cap. Solvers poll it at outer loop
// boundaries only, so overrun is bounded by one sweep.
type budget struct {
	useTime  bool
	start    time.Time
	deadline time.Time
	maxIters int
}

// startBudget starts the clock. The parameters must have passed
// validateBudget.
func startBudget(seconds float64, maxIters int) *budget {
	b := &budget{maxIters: maxIters, start: time.Now()}
	if seconds != Unbounded {
		b.useTime = true
		b.deadline = b.start.Add(time.Duration(seconds * float64(time.Second)))
	}
	return b
}

// expired reports whether the budget is exhausted. iter is the count of
// completed outer iterations; it is ignored under a time limit.
func (b *budget) expired(iter int) bool {
	if b.useTime {
		return time.Now().After(b.deadline)
	}
	return iter >= b.maxIters
}

// timeUp reports only the wall-clock condition, for inner loops that must
// bail out of a long sweep regardless of the iteration cap.
func (b *budget) timeUp() bool {
	return b.useTime && time.Now().After(b.deadline)
}
