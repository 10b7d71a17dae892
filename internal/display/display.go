// Package display composes what a host window shows: the last finished
// frame scaled to the window and, while a pass is running, the
// "Calculating" indicator on top of it.
package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BusyText is drawn while the orchestrator is Busy.
const BusyText = "Calculating ... Please Wait"

// BusyColor is the color of BusyText.
var BusyColor = color.RGBA{R: 255, G: 255, A: 255}

// margin between the indicator and the window's bottom-left corner
const margin = 5

// Screen holds the window size a frame is composed for.
type Screen struct {
	Width, Height int
	Scaler        xdraw.Scaler // nil means xdraw.ApproxBiLinear
}

// NewScreen returns a Screen of the given window size.
func NewScreen(width, height int) (Screen, error) {
	if width <= 0 || height <= 0 {
		return Screen{}, fmt.Errorf("display: invalid window size %dx%d", width, height)
	}
	return Screen{Width: width, Height: height}, nil
}

// Compose scales frame to the window and overlays the busy indicator when
// busy is set. A nil frame (nothing rendered yet) composes onto black.
// frame is not modified.
func (s Screen) Compose(frame *image.RGBA, busy bool) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.RGBA{A: 255}), image.Point{}, draw.Src)
	if frame != nil {
		scaler := s.Scaler
		if scaler == nil {
			scaler = xdraw.ApproxBiLinear
		}
		scaler.Scale(dst, dst.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
	}
	if !busy {
		return dst, nil
	}
	return overlay(dst, BusyText)
}

// overlay draws text on a translucent backdrop in the bottom-left corner.
func overlay(dst *image.RGBA, text string) (*image.RGBA, error) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	textW := font.MeasureString(face, text).Ceil()
	textH := (metrics.Ascent + metrics.Descent).Ceil()

	box := image.Rect(margin-2, dst.Rect.Dy()-margin-textH-2, margin+textW+2, dst.Rect.Dy()-margin+2)

	dc := gg.NewContextForImage(dst)
	defer dc.Close()
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRoundedRectangle(float64(box.Min.X), float64(box.Min.Y), float64(box.Dx()), float64(box.Dy()), 3)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("display: backdrop: %w", err)
	}
	out := toRGBA(dc.Image())

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(BusyColor),
		Face: face,
		Dot:  fixed.P(margin, dst.Rect.Dy()-margin-metrics.Descent.Ceil()),
	}
	d.DrawString(text)
	return out, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

// ToRaster maps a window position back to raster coordinates.
func (s Screen) ToRaster(windowX, windowY, rasterW, rasterH int) (x, y int) {
	x = windowX * rasterW / s.Width
	y = windowY * rasterH / s.Height
	return x, y
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("display: png: %w", err)
	}
	return nil
}
