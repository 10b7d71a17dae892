package mandel

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// RemainderPolicy decides what happens to the points left over when the
// grid length is not a multiple of the pool size.
type RemainderPolicy int

const (
	// RemainderToLast extends the last span to the end of the grid.
	RemainderToLast RemainderPolicy = iota
	// RemainderDrop leaves the trailing len%workers points uncomputed.
	RemainderDrop
)

func (p RemainderPolicy) String() string {
	switch p {
	case RemainderToLast:
		return "to-last"
	case RemainderDrop:
		return "drop"
	default:
		return fmt.Sprintf("RemainderPolicy(%d)", int(p))
	}
}

// ParseRemainderPolicy accepts the names printed by RemainderPolicy.String.
func ParseRemainderPolicy(name string) (RemainderPolicy, error) {
	switch name {
	case "to-last":
		return RemainderToLast, nil
	case "drop":
		return RemainderDrop, nil
	default:
		return 0, fmt.Errorf("mandel: unknown remainder policy %q", name)
	}
}

// Span is the half-open index range [Lo, Hi) of one worker's partition.
type Span struct {
	Lo, Hi int
}

// Len returns the number of points in s.
func (s Span) Len() int { return s.Hi - s.Lo }

func (s Span) String() string { return fmt.Sprintf("[%d,%d)", s.Lo, s.Hi) }

// Partition splits n points into k contiguous, disjoint spans of n/k points
// each; span i covers [n/k·i, n/k·(i+1)). The n%k trailing points are either
// appended to the last span or dropped, depending on policy.
func Partition(n, k int, policy RemainderPolicy) []Span {
	if k <= 0 {
		panic("partition count must be positive")
	}
	size := n / k
	spans := make([]Span, k)
	for i := range spans {
		spans[i] = Span{Lo: size * i, Hi: size * (i + 1)}
	}
	if policy == RemainderToLast {
		spans[k-1].Hi = n
	}
	return spans
}

// progressStride is how many points a worker computes between progress updates.
const progressStride = 1024

// Pool computes escape times over a grid with a fixed number of workers.
// One Run is expected at a time; the stats reflect the latest Run.
type Pool struct {
	workers int
	maxIter int
	radius  float64
	policy  RemainderPolicy
	logger  *slog.Logger

	active   atomic.Int32
	total    atomic.Int64
	finished atomic.Int64
}

// NewPool validates its arguments and returns an idle pool.
func NewPool(workers, maxIter int, radius float64, policy RemainderPolicy) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}
	if maxIter < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxIter, maxIter)
	}
	if !(radius > 0) || isBad(radius) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	return &Pool{workers: workers, maxIter: maxIter, radius: radius, policy: policy}, nil
}

// Workers returns the pool size.
func (p *Pool) Workers() int { return p.workers }

// Active returns the number of workers currently computing.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Progress returns the completed fraction of the current or last Run.
func (p *Pool) Progress() float64 {
	total := p.total.Load()
	if total == 0 {
		return 1
	}
	return float64(p.finished.Load()) / float64(total)
}

func (p *Pool) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return Logger()
}

// Run partitions points, computes every partition on its own worker and
// waits for all of them. The result holds one slice per worker, in worker
// order, each preserving the order of its span.
//
// The first worker error aborts the remaining workers and fails the pass;
// no partial result is returned.
func (p *Pool) Run(ctx context.Context, points []PlanePoint) ([][]Sample, error) {
	spans := Partition(len(points), p.workers, p.policy)
	computed := spans[len(spans)-1].Hi
	if dropped := len(points) - computed; dropped > 0 {
		p.log().Warn("mandel: remainder points not computed",
			"dropped", dropped, "points", len(points), "workers", p.workers)
	}
	p.total.Store(int64(computed))
	p.finished.Store(0)

	results := make([][]Sample, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	for i, span := range spans {
		g.Go(func() error {
			p.incActiveWorkers()
			defer p.decActiveWorkers()

			local, err := p.compute(gctx, points[span.Lo:span.Hi])
			if err != nil {
				return fmt.Errorf("worker %d %s: %w", i, span, err)
			}
			results[i] = local
			p.log().Debug("mandel: partition finished", "worker", i, "span", span.String(), "progress", p.Progress())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// compute runs the escape kernel over one partition into a worker-local slice.
func (p *Pool) compute(ctx context.Context, points []PlanePoint) ([]Sample, error) {
	local := make([]Sample, 0, len(points))
	pending := 0
	for _, c := range points {
		s, err := EscapeChecked(c, p.maxIter, p.radius)
		if err != nil {
			return nil, err
		}
		local = append(local, s)

		pending++
		if pending == progressStride {
			p.finished.Add(progressStride)
			pending = 0
			// a sibling failed, the pass is lost anyway
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	p.finished.Add(int64(pending))
	return local, nil
}

func (p *Pool) incActiveWorkers() {
	w := p.active.Add(1)
	p.log().Debug("mandel: workers", "active", w)
}

func (p *Pool) decActiveWorkers() {
	w := p.active.Add(-1)
	p.log().Debug("mandel: workers", "active", w)
}
