package mandel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Orchestrator owns the viewport and sequences computation passes:
// build the grid, run the pool, aggregate, hand the frame to the Renderer.
//
// Requests (Recompute, Zoom, Reset) never block on computation. Each one
// bumps a generation token and fills a single pending slot, so a burst of
// requests collapses into one pass over the newest viewport. Passes run one
// at a time on the Run goroutine; a pass that finishes after a newer request
// arrived is discarded instead of rendered.
type Orchestrator struct {
	opts     options
	pool     *Pool
	renderer Renderer
	logger   *slog.Logger
	initial  Viewport

	mu      sync.Mutex
	vp      Viewport
	gen     uint64
	pending bool

	wake    chan struct{}
	state   atomic.Int32
	running atomic.Bool

	notifyMu sync.Mutex
	notified State
}

// NewOrchestrator validates the configuration and returns an Idle
// orchestrator. Nothing is computed until Run is started and a request made.
func NewOrchestrator(renderer Renderer, opts ...Option) (*Orchestrator, error) {
	if renderer == nil {
		return nil, fmt.Errorf("mandel: nil renderer")
	}
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	vp, err := NewViewport(cfg.region, cfg.width, cfg.height)
	if err != nil {
		return nil, err
	}
	pool, err := NewPool(cfg.workers, cfg.maxIter, cfg.radius, cfg.remainder)
	if err != nil {
		return nil, err
	}
	logger := cfg.logger
	if logger == nil {
		logger = Logger()
	}
	pool.logger = logger

	return &Orchestrator{
		opts:     cfg,
		pool:     pool,
		renderer: renderer,
		logger:   logger,
		initial:  vp,
		vp:       vp,
		wake:     make(chan struct{}, 1),
	}, nil
}

// State returns Idle or Busy. It never blocks.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Viewport returns a snapshot of the current viewport.
func (o *Orchestrator) Viewport() Viewport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.vp
}

// Generation returns the token of the newest request.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}

// Pool exposes the worker pool for its live stats.
func (o *Orchestrator) Pool() *Pool { return o.pool }

// Recompute requests a pass over the current viewport.
func (o *Orchestrator) Recompute() {
	// a nil transition cannot fail
	_ = o.request(nil)
}

// Zoom recenters the viewport on (screenX, screenY), scales it by ratio and
// requests a pass. An invalid ratio leaves the viewport and state untouched.
func (o *Orchestrator) Zoom(screenX, screenY int, ratio float64) error {
	return o.request(func(v Viewport) (Viewport, error) {
		return v.Zoom(screenX, screenY, ratio)
	})
}

// Reset restores the initial viewport and requests a pass.
func (o *Orchestrator) Reset() {
	_ = o.request(func(Viewport) (Viewport, error) {
		return o.initial, nil
	})
}

var _ ZoomHandler = (*Orchestrator)(nil)

func (o *Orchestrator) request(transition func(Viewport) (Viewport, error)) error {
	o.mu.Lock()
	if transition != nil {
		vp, err := transition(o.vp)
		if err != nil {
			o.mu.Unlock()
			return err
		}
		o.vp = vp
	}
	o.gen++
	o.pending = true
	o.state.Store(int32(Busy))
	gen := o.gen
	o.mu.Unlock()

	o.logger.Debug("mandel: pass requested", "generation", gen)
	o.publishState()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// publishState reports the current state to the listener if it changed
// since the last report. Concurrent edges coalesce; the last report always
// matches the final state.
func (o *Orchestrator) publishState() {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	s := o.State()
	if s == o.notified {
		return
	}
	o.notified = s
	if o.opts.onState != nil {
		o.opts.onState(s)
	}
}

// Run executes passes until ctx is done. A pass in flight when ctx is
// cancelled still runs to completion; Run then returns ctx.Err().
// Only one Run may be active at a time.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer o.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.wake:
		}
		o.drain(ctx)
	}
}

// drain runs passes while requests are pending.
func (o *Orchestrator) drain(ctx context.Context) {
	for ctx.Err() == nil {
		o.mu.Lock()
		if !o.pending {
			o.mu.Unlock()
			return
		}
		o.pending = false
		vp, gen := o.vp, o.gen
		o.mu.Unlock()

		frame, err := o.pass(context.WithoutCancel(ctx), vp, gen)

		o.mu.Lock()
		stale := gen != o.gen
		o.mu.Unlock()

		switch {
		case err != nil:
			o.logger.Error("mandel: pass failed", "generation", gen, "err", err)
			if o.opts.onError != nil {
				o.opts.onError(gen, err)
			}
		case stale:
			o.logger.Debug("mandel: stale pass discarded", "generation", gen)
		default:
			o.renderer.RenderFrame(frame)
		}

		o.mu.Lock()
		more := o.pending
		if !more {
			o.state.Store(int32(Idle))
		}
		o.mu.Unlock()
		o.publishState()
		if !more {
			return
		}
	}
}

func (o *Orchestrator) pass(ctx context.Context, vp Viewport, gen uint64) (Frame, error) {
	start := time.Now()
	points := BuildGrid(vp)
	parts, err := o.pool.Run(ctx, points)
	if err != nil {
		return Frame{}, fmt.Errorf("pass %d: %w", gen, err)
	}
	img, drawn := aggregate(vp, parts, o.opts.palette, o.opts.background)
	elapsed := time.Since(start)

	o.logger.Info("mandel: pass complete",
		"generation", gen,
		"points", len(points),
		"drawn", drawn,
		"elapsed", elapsed,
		"xmin", vp.Xmin, "xmax", vp.Xmax, "ymin", vp.Ymin, "ymax", vp.Ymax)

	return Frame{
		Img:        img,
		Width:      vp.Width,
		Height:     vp.Height,
		Viewport:   vp,
		Generation: gen,
		Drawn:      drawn,
		Elapsed:    elapsed,
	}, nil
}
