package mandel_test

import (
	"context"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mandel "github.com/marben/zoom_mandel"
)

const waitFor = 10 * time.Second

// recorder collects everything an orchestrator reports.
type recorder struct {
	frames chan mandel.Frame
	errs   chan error

	mu     sync.Mutex
	states []mandel.State
}

func newRecorder() *recorder {
	return &recorder{
		frames: make(chan mandel.Frame, 16),
		errs:   make(chan error, 16),
	}
}

func (r *recorder) RenderFrame(f mandel.Frame) { r.frames <- f }

func (r *recorder) stateChanged(s mandel.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) passFailed(_ uint64, err error) { r.errs <- err }

func (r *recorder) seenStates() []mandel.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mandel.State(nil), r.states...)
}

func (r *recorder) options() []mandel.Option {
	return []mandel.Option{
		mandel.WithStateListener(r.stateChanged),
		mandel.WithErrorHandler(r.passFailed),
	}
}

func (r *recorder) waitFrame(t *testing.T) mandel.Frame {
	t.Helper()
	select {
	case f := <-r.frames:
		return f
	case err := <-r.errs:
		require.FailNow(t, "pass failed", "%v", err)
	case <-time.After(waitFor):
		require.FailNow(t, "timed out waiting for a frame")
	}
	return mandel.Frame{}
}

func newOrchestrator(t *testing.T, renderer mandel.Renderer, opts ...mandel.Option) *mandel.Orchestrator {
	t.Helper()
	o, err := mandel.NewOrchestrator(renderer, opts...)
	require.NoError(t, err)
	return o
}

// startRun runs o until the test ends.
func startRun(t *testing.T, o *mandel.Orchestrator) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitIdle(t *testing.T, o *mandel.Orchestrator) {
	t.Helper()
	require.Eventually(t, func() bool { return o.State() == mandel.Idle }, waitFor, time.Millisecond)
}

func TestOrchestrator_StartupPass(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, rec.options()...)
	require.Equal(t, mandel.Idle, o.State())
	require.Zero(t, o.Generation())

	startRun(t, o)
	o.Recompute()

	f := rec.waitFrame(t)
	require.Equal(t, uint64(1), f.Generation)
	require.Equal(t, mandel.DefaultWidth, f.Width)
	require.Equal(t, mandel.DefaultHeight, f.Height)
	require.Equal(t, mandel.DefaultWidth, f.Img.Bounds().Dx())
	require.Equal(t, mandel.DefaultHeight, f.Img.Bounds().Dy())
	requireRegion(t, mandel.DefaultRegion, f.Viewport.Region)
	require.Positive(t, f.Drawn)

	waitIdle(t, o)
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]mandel.State{mandel.Busy, mandel.Idle}, rec.seenStates())
	}, waitFor, time.Millisecond)
}

func TestOrchestrator_ZoomEndToEnd(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, rec.options()...)
	startRun(t, o)

	require.NoError(t, o.Zoom(200, 200, mandel.DefaultZoomRatio))
	f := rec.waitFrame(t)
	requireRegion(t, mandel.Region{Xmin: -1, Xmax: 1, Ymin: -1, Ymax: 1}, f.Viewport.Region)
	require.Equal(t, f.Viewport, o.Viewport())

	escaped := 0
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			if f.Img.RGBAAt(x, y) != mandel.DefaultBackground {
				escaped++
			}
		}
	}
	require.Positive(t, escaped)
	require.Less(t, escaped, f.Width*f.Height)
	requireMirrored(t, f.Img.RGBAAt, f.Width, f.Height)
}

func TestOrchestrator_BurstCollapses(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, append(rec.options(), mandel.WithSize(64, 64))...)

	o.Recompute()
	require.NoError(t, o.Zoom(10, 20, 0.5))
	require.NoError(t, o.Zoom(40, 40, 0.5))
	require.NoError(t, o.Zoom(32, 32, 2))
	require.Equal(t, uint64(4), o.Generation())
	require.Equal(t, mandel.Busy, o.State())

	want := o.Viewport()
	startRun(t, o)

	f := rec.waitFrame(t)
	require.Equal(t, uint64(4), f.Generation)
	require.Equal(t, want, f.Viewport)

	waitIdle(t, o)
	require.Never(t, func() bool { return len(rec.frames) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestOrchestrator_StalePassDiscarded(t *testing.T) {
	t.Parallel()
	rec := newRecorder()

	var o *mandel.Orchestrator
	var once sync.Once
	// the first colored pixel of the first pass issues a newer request
	palette := func(it int) color.RGBA {
		once.Do(func() { assert.NoError(t, o.Zoom(32, 32, 0.5)) })
		return mandel.ClassicPalette(it)
	}
	o = newOrchestrator(t, rec, append(rec.options(), mandel.WithSize(64, 64), mandel.WithPalette(palette))...)
	startRun(t, o)
	o.Recompute()

	f := rec.waitFrame(t)
	require.Equal(t, uint64(2), f.Generation)
	requireRegion(t, mandel.Region{Xmin: -1, Xmax: 1, Ymin: -1, Ymax: 1}, f.Viewport.Region)

	waitIdle(t, o)
	require.Never(t, func() bool { return len(rec.frames) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestOrchestrator_RequestFromRenderer(t *testing.T) {
	t.Parallel()
	frames := make(chan mandel.Frame, 4)

	var o *mandel.Orchestrator
	renderer := mandel.RendererFunc(func(f mandel.Frame) {
		if f.Generation == 1 {
			assert.NoError(t, o.Zoom(0, 0, 1))
		}
		frames <- f
	})
	o = newOrchestrator(t, renderer, mandel.WithSize(32, 32))
	startRun(t, o)
	o.Recompute()

	var got []uint64
	for len(got) < 2 {
		select {
		case f := <-frames:
			got = append(got, f.Generation)
		case <-time.After(waitFor):
			require.FailNow(t, "timed out", "frames so far %v", got)
		}
	}
	require.Equal(t, []uint64{1, 2}, got)
	waitIdle(t, o)
	requireRegion(t, mandel.Region{Xmin: -4, Xmax: 0, Ymin: -4, Ymax: 0}, o.Viewport().Region)
}

func TestOrchestrator_InvalidZoomIgnored(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, rec.options()...)

	before := o.Viewport()
	err := o.Zoom(10, 10, 0)
	require.ErrorIs(t, err, mandel.ErrInvalidRatio)
	require.Zero(t, o.Generation())
	require.Equal(t, mandel.Idle, o.State())
	require.Equal(t, before, o.Viewport())
	require.Empty(t, rec.seenStates())
}

func TestOrchestrator_Reset(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, append(rec.options(), mandel.WithSize(48, 48), mandel.WithRegion(mandel.SeahorseValley))...)
	startRun(t, o)

	require.NoError(t, o.Zoom(5, 5, 0.25))
	rec.waitFrame(t)
	o.Reset()
	f := rec.waitFrame(t)
	require.Equal(t, mandel.SeahorseValley, f.Viewport.Region)
	require.Equal(t, uint64(2), f.Generation)
}

func TestOrchestrator_RunTwice(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, append(rec.options(), mandel.WithSize(16, 16))...)
	startRun(t, o)
	o.Recompute()
	// a rendered frame proves the first Run is live
	rec.waitFrame(t)

	require.ErrorIs(t, o.Run(context.Background()), mandel.ErrAlreadyRunning)
}

func TestOrchestrator_RunReturnsOnCancel(t *testing.T) {
	t.Parallel()
	o := newOrchestrator(t, newRecorder())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		require.FailNow(t, "Run did not return")
	}
}

func TestOrchestrator_FailedPass(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, append(rec.options(),
		mandel.WithSize(16, 16),
		mandel.WithRegion(mandel.Region{Xmin: 1e200, Xmax: 2e200, Ymin: 0, Ymax: 1}),
		mandel.WithEscapeRadius(math.MaxFloat64),
	)...)
	startRun(t, o)
	o.Recompute()

	select {
	case err := <-rec.errs:
		require.ErrorIs(t, err, mandel.ErrNonFinite)
	case f := <-rec.frames:
		require.FailNow(t, "unexpected frame", "generation %d", f.Generation)
	case <-time.After(waitFor):
		require.FailNow(t, "timed out waiting for the failure")
	}
	waitIdle(t, o)
	require.Empty(t, rec.frames)

	// the orchestrator keeps serving requests after a failure
	o.Reset()
	select {
	case err := <-rec.errs:
		require.ErrorIs(t, err, mandel.ErrNonFinite)
	case <-time.After(waitFor):
		require.FailNow(t, "timed out waiting for the second failure")
	}
}

func TestNewOrchestrator_Errors(t *testing.T) {
	t.Parallel()
	_, err := mandel.NewOrchestrator(nil)
	require.Error(t, err)

	cases := []struct {
		name string
		opt  mandel.Option
		err  error
	}{
		{"size", mandel.WithSize(0, 400), mandel.ErrInvalidSize},
		{"region", mandel.WithRegion(mandel.Region{Xmin: 1, Xmax: 0, Ymin: 0, Ymax: 1}), mandel.ErrInvalidRegion},
		{"workers", mandel.WithWorkers(0), mandel.ErrInvalidWorkers},
		{"iterations", mandel.WithMaxIter(-1), mandel.ErrInvalidMaxIter},
		{"radius", mandel.WithEscapeRadius(-1), mandel.ErrInvalidRadius},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mandel.NewOrchestrator(newRecorder(), tc.opt)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestOrchestrator_WorkersOption(t *testing.T) {
	t.Parallel()
	rec := newRecorder()
	o := newOrchestrator(t, rec, append(rec.options(),
		mandel.WithSize(40, 30),
		mandel.WithWorkers(3),
		mandel.WithRemainderPolicy(mandel.RemainderDrop),
		mandel.WithBackground(color.RGBA{B: 80, A: 255}),
	)...)
	require.Equal(t, 3, o.Pool().Workers())
	startRun(t, o)
	o.Recompute()

	f := rec.waitFrame(t)
	require.Equal(t, color.RGBA{B: 80, A: 255}, f.Img.RGBAAt(20, 15))
	require.Equal(t, 1.0, o.Pool().Progress())
}

func TestState_String(t *testing.T) {
	t.Parallel()
	require.Equal(t, "idle", mandel.Idle.String())
	require.Equal(t, "busy", mandel.Busy.String())
	require.Equal(t, "unknown", mandel.State(7).String())
}
