package mandel

// GridLen returns the number of points BuildGrid produces for v.
func GridLen(v Viewport) int {
	return (v.Width + 1) * (v.Height + 1)
}

// BuildGrid enumerates the plane points of v: outer loop over x, inner loop
// over y, both inclusive of Xmax / Ymax, one pixel step apart.
//
// Coordinates derive from integer indices (Xmin + i·dx) so the grid always
// has exactly (Width+1)·(Height+1) points regardless of rounding.
func BuildGrid(v Viewport) []PlanePoint {
	dx, dy := v.Delta()
	points := make([]PlanePoint, 0, GridLen(v))
	for i := 0; i <= v.Width; i++ {
		x := v.Xmin + float64(i)*dx
		for j := 0; j <= v.Height; j++ {
			points = append(points, PlanePoint{Re: x, Im: v.Ymin + float64(j)*dy})
		}
	}
	return points
}
