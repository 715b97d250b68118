package placecraft

import "errors"

// Sentinel errors for invalid inputs and configuration. All are fatal: the
// caller receives the error and no permutation is returned. Call sites wrap
// with fmt.Errorf where extra context helps.
var (
	// ErrInvalidShape indicates the device count does not match the grid,
	// or a cost tensor dimension mismatch.
	ErrInvalidShape = errors.New("placecraft: shape mismatch")

	// ErrCostNotSymmetric indicates C[i,j,k,l] != C[j,i,l,k].
	ErrCostNotSymmetric = errors.New("placecraft: cost tensor not symmetric")

	// ErrCostNotZeroDiagonal indicates a nonzero C[i,i,·,·] or C[·,·,k,k].
	ErrCostNotZeroDiagonal = errors.New("placecraft: cost tensor diagonal not zero")

	// ErrOverscaledNet indicates the LCM of (net size − 1) over all nets
	// exceeds the 1e9 scaling cap.
	ErrOverscaledNet = errors.New("placecraft: net scale factor too large")

	// ErrBudgetUnspecified indicates neither a time budget nor an
	// iteration cap was provided.
	ErrBudgetUnspecified = errors.New("placecraft: no time or iteration budget")

	// ErrInvalidParameter indicates a named parameter violates its
	// constraint (n1>n2, z outside (0,100], eps<1, lambda_max<2, ...).
	ErrInvalidParameter = errors.New("placecraft: invalid parameter")
)
