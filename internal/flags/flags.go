// Package flags binds the explorer configuration to command-line flags
// shared by the commands.
package flags

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	mandel "github.com/marben/zoom_mandel"
)

// Config is the parsed flag set.
type Config struct {
	Width, Height int
	Workers       int
	MaxIter       int
	Radius        float64
	Palette       string
	Region        string
	Remainder     string
	LogLevel      string
}

// Register defines the shared flags on fs and returns the Config they fill.
func Register(fs *flag.FlagSet) *Config {
	c := &Config{}
	fs.IntVar(&c.Width, "width", mandel.DefaultWidth, "raster width in pixels")
	fs.IntVar(&c.Height, "height", mandel.DefaultHeight, "raster height in pixels")
	fs.IntVar(&c.Workers, "workers", mandel.DefaultWorkers, "worker pool size")
	fs.IntVar(&c.MaxIter, "iter", mandel.DefaultMaxIter, "iteration cap")
	fs.Float64Var(&c.Radius, "radius", mandel.DefaultEscapeRadius, "escape radius")
	fs.StringVar(&c.Palette, "palette", "classic", "palette: classic or rainbow")
	fs.StringVar(&c.Region, "region", "full", fmt.Sprintf("initial region %v", mandel.RegionNames()))
	fs.StringVar(&c.Remainder, "remainder", mandel.DefaultRemainder.String(), "remainder policy: to-last or drop")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	return c
}

// Options converts the flags into orchestrator options.
func (c *Config) Options() ([]mandel.Option, error) {
	palette, err := mandel.PaletteByName(c.Palette)
	if err != nil {
		return nil, fmt.Errorf("-palette: %w", err)
	}
	region, err := mandel.RegionByName(c.Region)
	if err != nil {
		return nil, fmt.Errorf("-region: %w", err)
	}
	remainder, err := mandel.ParseRemainderPolicy(c.Remainder)
	if err != nil {
		return nil, fmt.Errorf("-remainder: %w", err)
	}
	return []mandel.Option{
		mandel.WithSize(c.Width, c.Height),
		mandel.WithWorkers(c.Workers),
		mandel.WithMaxIter(c.MaxIter),
		mandel.WithEscapeRadius(c.Radius),
		mandel.WithPalette(palette),
		mandel.WithRegion(region),
		mandel.WithRemainderPolicy(remainder),
	}, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("-log-level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}
