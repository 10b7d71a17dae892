package mandel

import (
	"fmt"
	"math"
)

// Escape runs the quadratic iteration z = z² + c starting from z₀ = c for at
// most maxIter steps, stopping on the first step where |z| > radius.
//
// It returns the number of steps performed (1-based, the escaping step
// included) and whether the point is terminal, i.e. all maxIter steps ran.
// A point escaping on exactly the last step is still reported terminal.
//
// Escape holds no state and may be called from any number of goroutines.
func Escape(c PlanePoint, maxIter int, radius float64) (iterations int, terminal bool) {
	iterations, _, _ = iterate(c, maxIter, radius)
	return iterations, iterations == maxIter
}

// EscapeChecked is Escape that fails with ErrNonFinite when c or the last
// iterate is NaN or infinite.
func EscapeChecked(c PlanePoint, maxIter int, radius float64) (Sample, error) {
	if isBad(c.Re) || isBad(c.Im) {
		return Sample{}, fmt.Errorf("%w: c=%v", ErrNonFinite, c)
	}
	n, x, y := iterate(c, maxIter, radius)
	if isBad(x) || isBad(y) {
		return Sample{}, fmt.Errorf("%w: z=(%v,%v) after %d steps from c=%v", ErrNonFinite, x, y, n, c)
	}
	return Sample{Point: c, Iterations: n, Terminal: n == maxIter}, nil
}

func iterate(c PlanePoint, maxIter int, radius float64) (n int, x, y float64) {
	x, y = c.Re, c.Im
	for n = 1; n <= maxIter; n++ {
		x, y = x*x-y*y+c.Re, 2*x*y+c.Im
		if math.Sqrt(x*x+y*y) > radius {
			return n, x, y
		}
	}
	return maxIter, x, y
}

func isBad(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
