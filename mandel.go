package mandel

import (
	"fmt"
	"math"
	"sort"
)

// Region within the complex plane
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Width returns the extent of the real axis.
func (r Region) Width() float64 { return r.Xmax - r.Xmin }

// Height returns the extent of the imaginary axis.
func (r Region) Height() float64 { return r.Ymax - r.Ymin }

// Center returns the point in the middle of the region.
func (r Region) Center() PlanePoint {
	return PlanePoint{Re: (r.Xmin + r.Xmax) / 2, Im: (r.Ymin + r.Ymax) / 2}
}

// Validate reports whether r is a non-empty finite rectangle.
func (r Region) Validate() error {
	for _, v := range [...]float64{r.Xmin, r.Xmax, r.Ymin, r.Ymax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound in %+v", ErrInvalidRegion, r)
		}
	}
	if !(r.Xmin < r.Xmax) || !(r.Ymin < r.Ymax) {
		return fmt.Errorf("%w: %+v", ErrInvalidRegion, r)
	}
	return nil
}

// FullSet frames the whole Mandelbrot set, ±2 on both axes.
var FullSet = Region{
	Xmin: -2.0,
	Xmax: 2.0,
	Ymin: -2.0,
	Ymax: 2.0,
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}

	// Minibrot in a Mini-Spiral – self-similar Mandelbrot copy inside a spiral arm
	MinibrotInMiniSpiral = Region{
		Xmin: -1.7390,
		Xmax: -1.7375,
		Ymin: -0.0235,
		Ymax: -0.0220,
	}
)

var regionsByName = map[string]Region{
	"full":        FullSet,
	"seahorse":    SeahorseValley,
	"elephant":    ElephantValley,
	"spiral":      SpiralMinibrot,
	"triple":      TripleSpiral,
	"dragon":      ValleyOfTheDragon,
	"mini-spiral": MinibrotInMiniSpiral,
}

// RegionByName looks up one of the landmark regions by its short name.
func RegionByName(name string) (Region, error) {
	r, ok := regionsByName[name]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownRegion, name, RegionNames())
	}
	return r, nil
}

// RegionNames lists the names accepted by RegionByName, sorted.
func RegionNames() []string {
	names := make([]string, 0, len(regionsByName))
	for n := range regionsByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PlanePoint is a point of the complex plane, Re + Im·i.
type PlanePoint struct {
	Re, Im float64
}

// Sample is the escape-time result for one grid point.
type Sample struct {
	Point      PlanePoint
	Iterations int  // steps performed, in [1, maxIter]
	Terminal   bool // did not escape within maxIter steps
}
