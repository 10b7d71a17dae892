package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"

	mandel "github.com/marben/zoom_mandel"
	"github.com/marben/zoom_mandel/internal/display"
	"github.com/marben/zoom_mandel/internal/flags"
)

// main is the entry point for the Mandelbrot explorer.
// The browser page is only a window: every pass runs here and the finished
// frames are pushed to all connected pages over websocket.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	cfg := flags.Register(flag.CommandLine)
	port := flag.Int("port", 8080, "http port")
	window := flag.Int("window", mandel.DefaultWidth, "window size the frame is scaled to")
	flag.Parse()

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	mandel.SetLogger(logger)

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	screen, err := display.NewScreen(*window, *window*cfg.Height/cfg.Width)
	if err != nil {
		return err
	}

	// the hub is both the renderer and the state listener of the orchestrator
	h := newHub(screen)
	orch, err := mandel.NewOrchestrator(h, append(opts,
		mandel.WithStateListener(h.stateChanged),
		mandel.WithErrorHandler(func(gen uint64, err error) {
			log.Printf("pass %d failed: %v", gen, err)
		}),
	)...)
	if err != nil {
		return fmt.Errorf("mandel.NewOrchestrator: %w", err)
	}
	h.attach(orch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := orch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("orchestrator: %v", err)
		}
	}()

	// startup pass
	orch.Recompute()

	srv := webServer(ctx, *port, h)
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("httpServer.Shutdown: %v", err)
		}
	}()

	log.Printf("mb explorer waiting for websocket connections")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpServer: %w", err)
	}
	return nil
}
