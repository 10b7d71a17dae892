package mandel

import (
	"fmt"
	"image/color"
	"math"
	"sort"
)

// Palette colors an escaped sample by its iteration count.
type Palette func(iterations int) color.RGBA

// ClassicPalette is the linear ramp (10·n, n, n), each channel clamped to 255.
func ClassicPalette(iterations int) color.RGBA {
	return color.RGBA{
		R: clampByte(iterations * 10),
		G: clampByte(iterations),
		B: clampByte(iterations),
		A: 255,
	}
}

// RainbowPalette walks the hue circle, one full turn every 50 iterations.
func RainbowPalette(iterations int) color.RGBA {
	return hsv(float64(iterations)*0.02, 1, 1)
}

func clampByte(v int) uint8 {
	return uint8(max(0, min(255, v)))
}

// Simple HSV → RGB
func hsv(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
}

var palettesByName = map[string]Palette{
	"classic": ClassicPalette,
	"rainbow": RainbowPalette,
}

// PaletteByName returns the palette registered under name.
func PaletteByName(name string) (Palette, error) {
	p, ok := palettesByName[name]
	if !ok {
		names := make([]string, 0, len(palettesByName))
		for n := range palettesByName {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownPalette, name, names)
	}
	return p, nil
}
