package punch

import "errors"

// Punch domain errors
var (
	// ErrSnapshotUnavailable means no source batch has been ingested yet.
	// Bad data never produces errors; this only fires before the first
	// successful refresh.
	ErrSnapshotUnavailable = errors.New("attendance snapshot is not available yet")

	// ErrSourceUnavailable means the upstream CSV export could not be
	// fetched and no previous snapshot exists to fall back on.
	ErrSourceUnavailable = errors.New("attendance source could not be fetched")
)
