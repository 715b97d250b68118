package placecraft

import "fmt"

// Point is an integer coordinate pair in layout units.
type Point struct {
	X, Y int
}

// Device is a placeable component. Center is its current position; the
// half extents describe its bounding box and only matter to external
// writers, not to the solvers.
type Device struct {
	ID         int
	Center     Point
	HalfWidth  int
	HalfHeight int
}

// Pin belongs to exactly one device. Offset is the pin position relative
// to the device center, so the absolute pin position moves with the device.
type Pin struct {
	Device int
	Offset Point
}

// Net is a set of electrically connected pins, stored as indices into the
// layout's pin slice. Nets with fewer than two pins carry no cost.
type Net struct {
	Pins []int
}

// Layout is the in-memory placement instance: devices, their pins, and the
// nets connecting them. Reading and writing the on-disk layout format is
// the responsibility of external collaborators.
type Layout struct {
	Devices []Device
	Pins    []Pin
	Nets    []Net
}

// Grid describes the regular slot grid devices are placed on. Slot s sits
// in row s/Cols, column s%Cols, at coordinates (col·StepX, row·StepY).
type Grid struct {
	Rows, Cols   int
	StepX, StepY int
}

// DefaultStep is the slot pitch used when a caller does not override it.
const DefaultStep = 70

// Slots returns the number of slots on the grid.
func (g Grid) Slots() int {
	return g.Rows * g.Cols
}

// SlotX returns the x coordinate of slot s.
func (g Grid) SlotX(s int) int {
	return (s % g.Cols) * g.StepX
}

// SlotY returns the y coordinate of slot s.
func (g Grid) SlotY(s int) int {
	return (s / g.Cols) * g.StepY
}

func (g Grid) validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidParameter, g.Rows, g.Cols)
	}
	if g.StepX < 1 || g.StepY < 1 {
		return fmt.Errorf("%w: step %dx%d", ErrInvalidParameter, g.StepX, g.StepY)
	}
	return nil
}

// Validate checks that the layout fits the grid: one device per slot, and
// every pin and net reference in bounds.
func (l *Layout) Validate(grid Grid) error {
	if err := grid.validate(); err != nil {
		return err
	}
	if len(l.Devices) != grid.Slots() {
		return fmt.Errorf("%w: %d devices on a %dx%d grid",
			ErrInvalidShape, len(l.Devices), grid.Rows, grid.Cols)
	}
	for i, pin := range l.Pins {
		if pin.Device < 0 || pin.Device >= len(l.Devices) {
			return fmt.Errorf("%w: pin %d references device %d", ErrInvalidShape, i, pin.Device)
		}
	}
	for i, net := range l.Nets {
		for _, p := range net.Pins {
			if p < 0 || p >= len(l.Pins) {
				return fmt.Errorf("%w: net %d references pin %d", ErrInvalidShape, i, p)
			}
		}
	}
	return nil
}

// maxNetScale bounds the LCM-derived integer weight so per-pair costs stay
// well inside int64 range.
const maxNetScale = 1_000_000_000

// netScale computes the LCM of (net size − 1) over all nets with at least
// two pins. Dividing it by (size − 1) per net yields integer weights that
// keep all costs exact.
func netScale(nets []Net) (int64, error) {
	lcm := int64(1)
	for _, net := range nets {
		size := int64(len(net.Pins))
		if size <= 1 {
			continue
		}
		lcm = lcm * (size - 1) / gcd64(lcm, size-1)
		if lcm > maxNetScale {
			return 0, fmt.Errorf("%w: LCM exceeds %d", ErrOverscaledNet, int64(maxNetScale))
		}
	}
	return lcm, nil
}

func gcd64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
