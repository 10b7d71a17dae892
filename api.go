package mandel

import (
	"image"
	"time"
)

// Frame is the finished output of one computation pass.
// The receiver owns Img; the orchestrator never touches it again.
type Frame struct {
	Img        *image.RGBA
	Width      int
	Height     int
	Viewport   Viewport // the viewport the pass was computed for
	Generation uint64
	Drawn      int // samples written, i.e. escaped points
	Elapsed    time.Duration
}

// Renderer displays finished frames. RenderFrame is called from the
// orchestrator's Run goroutine, once per completed, non-stale pass.
type Renderer interface {
	RenderFrame(f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f Frame)

// RenderFrame implements Renderer.
func (fn RendererFunc) RenderFrame(f Frame) { fn(f) }

// ZoomHandler is the viewport-change side of the host interface.
type ZoomHandler interface {
	Zoom(screenX, screenY int, ratio float64) error
}

// State of the orchestrator.
type State int32

const (
	Idle State = iota
	Busy
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	default:
		return "unknown"
	}
}

// StateListener is called on every Idle/Busy edge, from the goroutine
// that caused it.
type StateListener func(State)

// ErrorHandler is called with the error of a failed pass.
type ErrorHandler func(generation uint64, err error)
