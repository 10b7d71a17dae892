package mandel

import (
	"image"
	"image/color"
	"image/draw"
)

// Aggregate rasterizes the per-worker results of one pass into a new
// buffer of v's dimensions, filled with background.
//
// Terminal samples are not drawn. Every other sample is colored by palette
// and written at v.PixelAt; when several samples share a pixel the last one
// in worker order, then partition order, wins.
func Aggregate(v Viewport, parts [][]Sample, palette Palette, background color.RGBA) *image.RGBA {
	img, _ := aggregate(v, parts, palette, background)
	return img
}

func aggregate(v Viewport, parts [][]Sample, palette Palette, background color.RGBA) (*image.RGBA, int) {
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	drawn := 0
	for _, part := range parts {
		for _, s := range part {
			if s.Terminal {
				continue
			}
			x, y := v.PixelAt(s.Point)
			img.SetRGBA(x, y, palette(s.Iterations))
			drawn++
		}
	}
	return img, drawn
}
