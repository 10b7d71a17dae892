package mandel

import (
	"image/color"
	"log/slog"
)

// Defaults of the interactive explorer.
const (
	DefaultMaxIter      = 100
	DefaultEscapeRadius = 1.5
	DefaultWorkers      = 5
	DefaultWidth        = 400
	DefaultHeight       = 400
	DefaultZoomRatio    = 0.5
	DefaultRemainder    = RemainderToLast
)

// DefaultRegion is the region shown at startup.
var DefaultRegion = FullSet

// DefaultPalette colors escaped samples unless WithPalette says otherwise.
var DefaultPalette Palette = ClassicPalette

// DefaultBackground is the color of pixels no escaped sample lands on.
var DefaultBackground = color.RGBA{A: 255}

// Option configures an Orchestrator during creation.
//
// Example:
//
//	o, err := mandel.NewOrchestrator(display,
//	    mandel.WithWorkers(runtime.GOMAXPROCS(0)),
//	    mandel.WithPalette(mandel.RainbowPalette),
//	)
type Option func(*options)

type options struct {
	region     Region
	width      int
	height     int
	maxIter    int
	radius     float64
	workers    int
	palette    Palette
	background color.RGBA
	remainder  RemainderPolicy
	logger     *slog.Logger
	onState    StateListener
	onError    ErrorHandler
}

func defaultOptions() options {
	return options{
		region:     DefaultRegion,
		width:      DefaultWidth,
		height:     DefaultHeight,
		maxIter:    DefaultMaxIter,
		radius:     DefaultEscapeRadius,
		workers:    DefaultWorkers,
		palette:    DefaultPalette,
		background: DefaultBackground,
		remainder:  DefaultRemainder,
	}
}

// WithRegion sets the initial (and Reset) region of the plane.
func WithRegion(r Region) Option {
	return func(o *options) { o.region = r }
}

// WithSize sets the raster dimensions in pixels.
func WithSize(width, height int) Option {
	return func(o *options) { o.width, o.height = width, height }
}

// WithMaxIter sets the iteration cap.
func WithMaxIter(n int) Option {
	return func(o *options) { o.maxIter = n }
}

// WithEscapeRadius sets the radius beyond which a point has escaped.
func WithEscapeRadius(r float64) Option {
	return func(o *options) { o.radius = r }
}

// WithWorkers sets the pool size.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithPalette sets the palette; nil keeps DefaultPalette.
func WithPalette(p Palette) Option {
	return func(o *options) {
		if p != nil {
			o.palette = p
		}
	}
}

// WithBackground sets the color of undrawn pixels.
func WithBackground(c color.RGBA) Option {
	return func(o *options) { o.background = c }
}

// WithRemainderPolicy selects what happens to grid points left over by
// the even split across workers.
func WithRemainderPolicy(p RemainderPolicy) Option {
	return func(o *options) { o.remainder = p }
}

// WithLogger overrides the package logger for one orchestrator.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStateListener observes every Idle/Busy transition.
func WithStateListener(fn StateListener) Option {
	return func(o *options) { o.onState = fn }
}

// WithErrorHandler receives the error of every failed pass.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *options) { o.onError = fn }
}
