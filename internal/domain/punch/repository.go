package punch

import "context"

// SnapshotRepository holds the latest ingested snapshot. Replace swaps the
// whole snapshot atomically; readers always see a complete, immutable batch.
type SnapshotRepository interface {
	// Latest returns the current snapshot, or ErrSnapshotUnavailable if
	// nothing has been ingested yet.
	Latest() (*Snapshot, error)

	// Replace installs a freshly built snapshot.
	Replace(s *Snapshot)
}

// EventSource fetches the raw CSV export from the upstream collaborator.
// Transport concerns (timeouts, retries, warning rate limits) live behind
// this boundary, not in the engine.
type EventSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}
