package mandel

import (
	"fmt"
	"math"
)

// Viewport pairs the visible Region with the raster it is mapped onto.
//
// Screen coordinates are image coordinates: x grows right from Xmin,
// y grows down from Ymin (row 0 is Ymin).
type Viewport struct {
	Region
	Width, Height int
}

// NewViewport validates r and the raster dimensions.
func NewViewport(r Region, width, height int) (Viewport, error) {
	if err := r.Validate(); err != nil {
		return Viewport{}, err
	}
	if width <= 0 || height <= 0 {
		return Viewport{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return Viewport{Region: r, Width: width, Height: height}, nil
}

// Delta returns the plane distance between neighbouring pixels on each axis.
func (v Viewport) Delta() (dx, dy float64) {
	return v.Region.Width() / float64(v.Width), v.Region.Height() / float64(v.Height)
}

// PlaneAt maps a (possibly fractional) screen coordinate to the plane.
func (v Viewport) PlaneAt(screenX, screenY float64) PlanePoint {
	return PlanePoint{
		Re: screenX/float64(v.Width)*v.Region.Width() + v.Xmin,
		Im: screenY/float64(v.Height)*v.Region.Height() + v.Ymin,
	}
}

// PixelAt maps a plane point to the nearest pixel, clamped into the raster.
// Points on Xmax / Ymax land on the last column / row.
func (v Viewport) PixelAt(p PlanePoint) (x, y int) {
	x = toPixel(p.Re, v.Xmin, v.Region.Width(), v.Width)
	y = toPixel(p.Im, v.Ymin, v.Region.Height(), v.Height)
	return x, y
}

func toPixel(c, lo, extent float64, size int) int {
	f := math.Round((c - lo) / extent * float64(size))
	// NaN fails both comparisons below, send it to 0
	if !(f >= 0) {
		return 0
	}
	if f > float64(size-1) {
		return size - 1
	}
	return int(f)
}

// Zoom recenters on the plane point under (screenX, screenY) and scales
// both extents by ratio: below 1 zooms in, above 1 zooms out.
// The receiver is not modified.
func (v Viewport) Zoom(screenX, screenY int, ratio float64) (Viewport, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return v, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	halfW := v.Region.Width() / 2 * ratio
	halfH := v.Region.Height() / 2 * ratio
	c := v.PlaneAt(float64(screenX), float64(screenY))

	r := Region{
		Xmin: c.Re - halfW,
		Xmax: c.Re + halfW,
		Ymin: c.Im - halfH,
		Ymax: c.Im + halfH,
	}
	// deep zooms eventually collapse the extent below float resolution
	if err := r.Validate(); err != nil {
		return v, fmt.Errorf("zoom (%d,%d) x%v: %w", screenX, screenY, ratio, err)
	}
	return Viewport{Region: r, Width: v.Width, Height: v.Height}, nil
}
