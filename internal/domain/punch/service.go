package punch

import (
	"context"
)

// AnalyticsService defines the read-model derivations served to the
// dashboard. Every method recomputes from the latest immutable snapshot;
// there is no hidden state between calls.
type AnalyticsService interface {
	// KPISnapshot computes the headline numbers for one calendar date.
	KPISnapshot(ctx context.Context, filter DashboardFilter) (KPIResponse, error)

	// HourlyActivity computes per-hour punch-in/punch-out counts.
	HourlyActivity(ctx context.Context, filter HourlyFilter) (HourlyActivityResponse, error)

	// TopWorkload ranks employees by total paired hours, descending.
	TopWorkload(ctx context.Context, filter WorkloadFilter) (WorkloadResponse, error)

	// LatestLocations returns each employee's most recent event with its
	// geofence classification.
	LatestLocations(ctx context.Context, filter DashboardFilter) (LocationsResponse, error)

	// ListExceptions returns the classified anomaly list, paginated.
	ListExceptions(ctx context.Context, filter ExceptionFilter) (ListExceptionsResponse, error)

	// ShiftHistory returns one employee's paired shifts within a date
	// window, most recent first. An unknown employee yields an empty list.
	ShiftHistory(ctx context.Context, filter ShiftHistoryFilter) (ShiftHistoryResponse, error)
}

// RefreshService re-ingests the upstream source and swaps in a new snapshot.
type RefreshService interface {
	Refresh(ctx context.Context) (RefreshResponse, error)
}
