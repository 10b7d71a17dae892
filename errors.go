package mandel

import "errors"

var (
	// ErrInvalidRegion is returned for empty, inverted or non-finite plane bounds.
	ErrInvalidRegion = errors.New("mandel: invalid region")
	// ErrInvalidSize is returned for non-positive raster dimensions.
	ErrInvalidSize = errors.New("mandel: invalid raster size")
	// ErrInvalidRatio is returned by Zoom for a non-positive or non-finite ratio.
	ErrInvalidRatio = errors.New("mandel: invalid zoom ratio")
	// ErrInvalidWorkers is returned for a pool size below one.
	ErrInvalidWorkers = errors.New("mandel: invalid worker count")
	// ErrInvalidMaxIter is returned for an iteration cap below one.
	ErrInvalidMaxIter = errors.New("mandel: invalid iteration cap")
	// ErrInvalidRadius is returned for a non-positive or non-finite escape radius.
	ErrInvalidRadius = errors.New("mandel: invalid escape radius")
	// ErrNonFinite reports a NaN or infinite value met during iteration.
	// It aborts the partition and the whole pass.
	ErrNonFinite = errors.New("mandel: non-finite value")
	// ErrUnknownPalette is returned by PaletteByName.
	ErrUnknownPalette = errors.New("mandel: unknown palette")
	// ErrUnknownRegion is returned by RegionByName.
	ErrUnknownRegion = errors.New("mandel: unknown region")
	// ErrAlreadyRunning is returned by a second concurrent Orchestrator.Run.
	ErrAlreadyRunning = errors.New("mandel: orchestrator already running")
)
