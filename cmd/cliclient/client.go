package main

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	mandel "github.com/marben/zoom_mandel"
)

// parseClicks reads "x,y;x,y" into points. An empty string means no clicks.
func parseClicks(s string) ([]image.Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var clicks []image.Point
	for _, pair := range strings.Split(s, ";") {
		xs, ys, ok := strings.Cut(strings.TrimSpace(pair), ",")
		if !ok {
			return nil, fmt.Errorf("click %q: want x,y", pair)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("click %q: %w", pair, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("click %q: %w", pair, err)
		}
		clicks = append(clicks, image.Pt(x, y))
	}
	return clicks, nil
}

// render applies every click to a fresh orchestrator and returns the frame
// computed for the final viewport.
func render(ctx context.Context, clicks []image.Point, ratio float64, opts ...mandel.Option) (mandel.Frame, error) {
	frames := make(chan mandel.Frame, 1)
	failures := make(chan error, 1)

	orch, err := mandel.NewOrchestrator(mandel.RendererFunc(func(f mandel.Frame) {
		select {
		case frames <- f:
		default:
		}
	}), append(opts, mandel.WithErrorHandler(func(gen uint64, err error) {
		select {
		case failures <- err:
		default:
		}
	}))...)
	if err != nil {
		return mandel.Frame{}, fmt.Errorf("mandel.NewOrchestrator: %w", err)
	}

	// requests made before Run collapse into one pass over the last viewport
	orch.Recompute()
	for _, c := range clicks {
		if err := orch.Zoom(c.X, c.Y, ratio); err != nil {
			return mandel.Frame{}, fmt.Errorf("zoom at %v: %w", c, err)
		}
	}
	want := orch.Generation()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go orch.Run(runCtx)

	for {
		select {
		case f := <-frames:
			if f.Generation == want {
				return f, nil
			}
		case err := <-failures:
			return mandel.Frame{}, err
		case <-ctx.Done():
			return mandel.Frame{}, fmt.Errorf("waiting for frame %d: %w", want, ctx.Err())
		}
	}
}
