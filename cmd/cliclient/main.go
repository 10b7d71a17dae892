// cliclient is a headless host for the Mandelbrot explorer.
// It replays a list of clicks against the orchestrator, waits for the frame of
// the last one and saves it as a PNG file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	mandel "github.com/marben/zoom_mandel"
	"github.com/marben/zoom_mandel/internal/display"
	"github.com/marben/zoom_mandel/internal/flags"
)

// main is the entry point for the CLI client.
// It runs the client logic and logs any fatal errors.
func main() {
	log.Printf("Starting CLI client...")
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run renders the requested view and saves it as a PNG file.
// Returns an error if any step fails.
func run() error {
	cfg := flags.Register(flag.CommandLine)
	clicksFlag := flag.String("clicks", "", `zoom clicks in raster coordinates, "x,y;x,y"`)
	ratio := flag.Float64("ratio", mandel.DefaultZoomRatio, "zoom ratio applied at every click")
	filename := flag.String("o", "mandel.png", "output file")
	timeout := flag.Duration("timeout", time.Minute, "give up after this long")
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
	clicks, err := parseClicks(*clicksFlag)
	if err != nil {
		return fmt.Errorf("-clicks: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Step 1: Replay the clicks and render the final view
	log.Printf("Rendering %dx%d after %d clicks...", cfg.Width, cfg.Height, len(clicks))
	frame, err := render(ctx, clicks, *ratio, opts...)
	if err != nil {
		return err
	}
	log.Printf("Frame %d: %d escaped samples in %s, region %+v",
		frame.Generation, frame.Drawn, frame.Elapsed, frame.Viewport.Region)

	// Step 2: Save the rendered image to a PNG file
	log.Printf("Saving rendered image to %q...", *filename)
	f, err := os.Create(*filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := display.EncodePNG(f, frame.Img); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	log.Printf("Fully rendered image saved to %q", *filename)
	return nil
}
