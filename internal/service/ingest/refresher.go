package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/metrics"
)

// Refresher runs one fetch-parse-index cycle and swaps the result into the
// snapshot store. A failed fetch leaves the previous snapshot untouched, so
// readers keep seeing the last good batch.
type Refresher struct {
	source     punch.EventSource
	store      punch.SnapshotRepository
	normalizer *Normalizer
	metrics    *metrics.Metrics
}

func NewRefresher(
	source punch.EventSource,
	store punch.SnapshotRepository,
	normalizer *Normalizer,
	m *metrics.Metrics,
) punch.RefreshService {
	return &Refresher{
		source:     source,
		store:      store,
		normalizer: normalizer,
		metrics:    m,
	}
}

// Refresh implements punch.RefreshService.
func (r *Refresher) Refresh(ctx context.Context) (punch.RefreshResponse, error) {
	start := time.Now()

	data, err := r.source.Fetch(ctx)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RefreshFailures.Inc()
		}
		return punch.RefreshResponse{}, fmt.Errorf("failed to fetch punch source: %w", err)
	}

	snapshot := r.normalizer.ParseBatch(data, time.Now())
	r.store.Replace(snapshot)

	if r.metrics != nil {
		r.metrics.ObserveRefresh(time.Since(start), len(snapshot.Events), snapshot.DroppedRows)
	}
	slog.Info("Punch snapshot refreshed",
		"events", len(snapshot.Events),
		"dropped_rows", snapshot.DroppedRows,
		"duration", time.Since(start),
	)

	return punch.RefreshResponse{
		EventCount:  len(snapshot.Events),
		DroppedRows: snapshot.DroppedRows,
		FetchedAt:   snapshot.FetchedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
