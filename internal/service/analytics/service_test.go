package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/compliance"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/exception"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/shift"
)

const testDate = "2025-03-05"

var testNow = time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)

func newTestService(events []punch.PunchEvent) *AnalyticsServiceImpl {
	store := memory.NewSnapshotStore()
	store.Replace(punch.NewSnapshot(events, testNow, 0))

	pairer := shift.NewPairer(50)
	return &AnalyticsServiceImpl{
		store:      store,
		pairer:     pairer,
		classifier: compliance.NewClassifier(50, 100),
		detector: exception.NewDetector(pairer, exception.Thresholds{
			WorkStartMinutes:    9 * 60,
			GraceMinutes:        15,
			WarningDistanceM:    100,
			CriticalDistanceM:   200,
			OpenSessionWarning:  8 * time.Hour,
			OpenSessionCritical: 12 * time.Hour,
		}),
		corrections: map[string]string{"EMQ": "EMP"},
		now:         func() time.Time { return testNow },
	}
}

func event(employeeID, name string, typ punch.PunchType, day, hour, minute int, distance *float64) punch.PunchEvent {
	return punch.PunchEvent{
		EmployeeID:     employeeID,
		EmployeeName:   name,
		Type:           typ,
		Timestamp:      time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC),
		DistanceMeters: distance,
	}
}

func meters(v float64) *float64 { return &v }

func standardDay() []punch.PunchEvent {
	return []punch.PunchEvent{
		// Full 09:00-17:00 shift.
		event("EMP001", "Budi", punch.PunchIn, 5, 9, 0, meters(20)),
		event("EMP001", "Budi", punch.PunchOut, 5, 17, 0, meters(30)),
		// Split day with a one-hour lunch: 3h + 4h.
		event("EMP002", "Siti", punch.PunchIn, 5, 9, 0, meters(60)),
		event("EMP002", "Siti", punch.PunchOut, 5, 12, 0, nil),
		event("EMP002", "Siti", punch.PunchIn, 5, 13, 0, nil),
		event("EMP002", "Siti", punch.PunchOut, 5, 17, 0, nil),
	}
}

func TestKPISnapshot(t *testing.T) {
	svc := newTestService(standardDay())

	kpi, err := svc.KPISnapshot(context.Background(), punch.DashboardFilter{Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, 2, kpi.ActiveEmployees)
	assert.Equal(t, 15.0, kpi.TotalWorkingHours) // 8h + 7h
	// Distances 20, 30, 60: two of three compliant.
	assert.Equal(t, 66.7, kpi.CompliancePct)
	assert.Equal(t, 0, kpi.ExceptionCount)
	assert.Equal(t, "2025-03-05 18:00:00", kpi.GeneratedAt)
}

func TestKPISnapshot_EmptyDay(t *testing.T) {
	svc := newTestService(nil)

	kpi, err := svc.KPISnapshot(context.Background(), punch.DashboardFilter{Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, 0, kpi.ActiveEmployees)
	assert.Equal(t, 0.0, kpi.TotalWorkingHours)
	// No distance data means no penalty.
	assert.Equal(t, 100.0, kpi.CompliancePct)
	assert.Equal(t, 0, kpi.ExceptionCount)
}

func TestKPISnapshot_Idempotent(t *testing.T) {
	svc := newTestService(standardDay())

	first, err := svc.KPISnapshot(context.Background(), punch.DashboardFilter{Date: testDate})
	require.NoError(t, err)
	second, err := svc.KPISnapshot(context.Background(), punch.DashboardFilter{Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestKPISnapshot_OrphanOutExcludedFromCount(t *testing.T) {
	svc := newTestService([]punch.PunchEvent{
		event("EMP001", "Budi", punch.PunchOut, 5, 10, 0, meters(10)),
	})
	ctx := context.Background()

	kpi, err := svc.KPISnapshot(ctx, punch.DashboardFilter{Date: testDate})
	require.NoError(t, err)
	assert.Equal(t, 0, kpi.ExceptionCount)

	// The orphan stays visible in the full exception list.
	list, err := svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate})
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalCount)
}

func TestKPISnapshot_NoSnapshot(t *testing.T) {
	svc := newTestService(nil)
	svc.store = memory.NewSnapshotStore()

	_, err := svc.KPISnapshot(context.Background(), punch.DashboardFilter{Date: testDate})
	assert.ErrorIs(t, err, punch.ErrSnapshotUnavailable)
}

func TestKPISnapshot_InvalidDate(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.KPISnapshot(context.Background(), punch.DashboardFilter{Date: "03/05/2025"})
	assert.Error(t, err)
}

func TestHourlyActivity(t *testing.T) {
	svc := newTestService(standardDay())

	resp, err := svc.HourlyActivity(context.Background(), punch.HourlyFilter{Date: testDate, EndHour: 23})
	require.NoError(t, err)

	require.Len(t, resp.Buckets, 24)
	assert.Equal(t, "09:00", resp.Buckets[9].Hour)
	assert.Equal(t, 2, resp.Buckets[9].InCount)
	assert.Equal(t, 0, resp.Buckets[9].OutCount)
	assert.Equal(t, 1, resp.Buckets[12].OutCount)
	assert.Equal(t, 2, resp.Buckets[17].OutCount)
	assert.Equal(t, 0, resp.Buckets[8].InCount)
}

func TestHourlyActivity_Range(t *testing.T) {
	svc := newTestService(standardDay())

	resp, err := svc.HourlyActivity(context.Background(), punch.HourlyFilter{
		Date:      testDate,
		StartHour: 9,
		EndHour:   12,
	})
	require.NoError(t, err)

	require.Len(t, resp.Buckets, 4)
	assert.Equal(t, "09:00", resp.Buckets[0].Hour)
	assert.Equal(t, "12:00", resp.Buckets[3].Hour)
}

func TestHourlyActivity_MidnightBucketOnly(t *testing.T) {
	events := standardDay()
	events = append(events, event("EMP003", "Andi", punch.PunchOut, 5, 0, 30, nil))
	svc := newTestService(events)

	resp, err := svc.HourlyActivity(context.Background(), punch.HourlyFilter{
		Date:      testDate,
		StartHour: 0,
		EndHour:   0,
	})
	require.NoError(t, err)

	require.Len(t, resp.Buckets, 1)
	assert.Equal(t, "00:00", resp.Buckets[0].Hour)
	assert.Equal(t, 1, resp.Buckets[0].OutCount)
}

func TestTopWorkload(t *testing.T) {
	svc := newTestService(standardDay())

	resp, err := svc.TopWorkload(context.Background(), punch.WorkloadFilter{Date: testDate})
	require.NoError(t, err)

	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "EMP001", resp.Entries[0].EmployeeID)
	assert.Equal(t, 8.0, resp.Entries[0].TotalHours)
	assert.Equal(t, "EMP002", resp.Entries[1].EmployeeID)
	assert.Equal(t, 7.0, resp.Entries[1].TotalHours)
}

func TestTopWorkload_OrderIndependentOfInput(t *testing.T) {
	events := standardDay()
	reversed := make([]punch.PunchEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		reversed = append(reversed, events[i])
	}

	a, err := newTestService(events).TopWorkload(context.Background(), punch.WorkloadFilter{Date: testDate})
	require.NoError(t, err)
	b, err := newTestService(reversed).TopWorkload(context.Background(), punch.WorkloadFilter{Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, a.Entries, b.Entries)
}

func TestTopWorkload_LimitAndZeroMinuteEmployees(t *testing.T) {
	events := standardDay()
	// Open shift only: zero paired minutes, excluded from the ranking.
	events = append(events, event("EMP003", "Andi", punch.PunchIn, 5, 9, 0, nil))

	svc := newTestService(events)
	resp, err := svc.TopWorkload(context.Background(), punch.WorkloadFilter{Date: testDate, Limit: 1})
	require.NoError(t, err)

	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "EMP001", resp.Entries[0].EmployeeID)
}

func TestLatestLocations(t *testing.T) {
	events := standardDay()
	events = append(events, punch.PunchEvent{
		EmployeeID:     "EMP003",
		EmployeeName:   "Andi",
		Type:           punch.PunchIn,
		Timestamp:      time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),
		RawLocation:    "Client site",
		Coordinates:    &punch.Coordinates{Latitude: -6.2, Longitude: 106.8},
		DistanceMeters: meters(150),
	})

	svc := newTestService(events)
	resp, err := svc.LatestLocations(context.Background(), punch.DashboardFilter{Date: testDate})
	require.NoError(t, err)

	require.Len(t, resp.Locations, 3)
	// Sorted by employee ID; each row reflects the employee's last event.
	assert.Equal(t, "EMP001", resp.Locations[0].EmployeeID)
	assert.Equal(t, punch.ComplianceCompliant, resp.Locations[0].Status)
	assert.Equal(t, "2025-03-05 17:00:00", resp.Locations[0].Timestamp)
	assert.Equal(t, punch.ComplianceUnknown, resp.Locations[1].Status)

	andi := resp.Locations[2]
	assert.Equal(t, punch.ComplianceBreach, andi.Status)
	assert.Equal(t, "Client site", andi.Location)
	require.NotNil(t, andi.Latitude)
	assert.Equal(t, -6.2, *andi.Latitude)
}

func TestListExceptions_Pagination(t *testing.T) {
	// Three late arrivals, one per employee.
	var events []punch.PunchEvent
	for _, id := range []string{"EMP001", "EMP002", "EMP003"} {
		events = append(events,
			event(id, "", punch.PunchIn, 5, 9, 30, nil),
			event(id, "", punch.PunchOut, 5, 17, 0, nil),
		)
	}

	svc := newTestService(events)
	ctx := context.Background()

	page1, err := svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page1.TotalCount)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Len(t, page1.Exceptions, 2)

	page2, err := svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page2.Exceptions, 1)

	// Pages never overlap.
	assert.NotEqual(t, page1.Exceptions[0].ID, page2.Exceptions[0].ID)

	empty, err := svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, empty.Exceptions)
	assert.Equal(t, 3, empty.TotalCount)
}

func TestListExceptions_Filters(t *testing.T) {
	events := []punch.PunchEvent{
		event("EMP001", "Budi", punch.PunchIn, 5, 9, 30, nil),     // warning late arrival
		event("EMP001", "Budi", punch.PunchOut, 5, 17, 0, nil),
		event("EMP002", "Siti", punch.PunchIn, 5, 9, 0, meters(250)), // critical breach
		event("EMP002", "Siti", punch.PunchOut, 5, 17, 0, nil),
	}
	svc := newTestService(events)
	ctx := context.Background()

	critical := "critical"
	resp, err := svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Severity: &critical})
	require.NoError(t, err)
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "EMP002", resp.Exceptions[0].EmployeeID)

	lateType := "late_arrival"
	resp, err = svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Type: &lateType})
	require.NoError(t, err)
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "EMP001", resp.Exceptions[0].EmployeeID)

	bogus := "catastrophic"
	_, err = svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Severity: &bogus})
	assert.Error(t, err)
}

func TestListExceptions_FiltersAreCaseInsensitive(t *testing.T) {
	events := []punch.PunchEvent{
		event("EMP001", "Budi", punch.PunchIn, 5, 9, 30, nil),
		event("EMP001", "Budi", punch.PunchOut, 5, 17, 0, nil),
		event("EMP002", "Siti", punch.PunchIn, 5, 9, 0, meters(250)),
		event("EMP002", "Siti", punch.PunchOut, 5, 17, 0, nil),
	}
	svc := newTestService(events)
	ctx := context.Background()

	upper := "CRITICAL"
	resp, err := svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Severity: &upper})
	require.NoError(t, err)
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "EMP002", resp.Exceptions[0].EmployeeID)

	mixed := "Late_Arrival"
	resp, err = svc.ListExceptions(ctx, punch.ExceptionFilter{Date: testDate, Type: &mixed})
	require.NoError(t, err)
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "EMP001", resp.Exceptions[0].EmployeeID)
}

func TestShiftHistory(t *testing.T) {
	events := []punch.PunchEvent{
		event("EMP001", "Budi", punch.PunchIn, 4, 9, 0, meters(20)),
		event("EMP001", "Budi", punch.PunchOut, 4, 17, 0, meters(20)),
		event("EMP001", "Budi", punch.PunchIn, 5, 9, 0, meters(20)),
		event("EMP001", "Budi", punch.PunchOut, 5, 12, 0, meters(20)),
		event("EMP001", "Budi", punch.PunchIn, 5, 13, 0, meters(20)),
	}

	svc := newTestService(events)
	resp, err := svc.ShiftHistory(context.Background(), punch.ShiftHistoryFilter{EmployeeID: "EMP001"})
	require.NoError(t, err)

	assert.Equal(t, "Budi", resp.EmployeeName)
	require.Len(t, resp.Shifts, 3)

	// Most recent date first; within a day, later shifts first.
	assert.Equal(t, "2025-03-05", resp.Shifts[0].Date)
	assert.True(t, resp.Shifts[0].Open)
	assert.Equal(t, "2025-03-05", resp.Shifts[1].Date)
	require.NotNil(t, resp.Shifts[1].WorkingHours)
	assert.Equal(t, 3.0, *resp.Shifts[1].WorkingHours)
	assert.Equal(t, "2025-03-04", resp.Shifts[2].Date)
	assert.Equal(t, 8.0, *resp.Shifts[2].WorkingHours)
}

func TestShiftHistory_CanonicalizesQueriedID(t *testing.T) {
	svc := newTestService(standardDay())
	ctx := context.Background()

	// Any spelling of the badge resolves against the canonical index.
	for _, spelling := range []string{"emp001", " emp 001 ", "EMQ001"} {
		resp, err := svc.ShiftHistory(ctx, punch.ShiftHistoryFilter{EmployeeID: spelling})
		require.NoError(t, err, "spelling %q", spelling)
		assert.Equal(t, "EMP001", resp.EmployeeID, "spelling %q", spelling)
		assert.Equal(t, "Budi", resp.EmployeeName, "spelling %q", spelling)
		require.Len(t, resp.Shifts, 1, "spelling %q", spelling)
		assert.Equal(t, 8.0, *resp.Shifts[0].WorkingHours, "spelling %q", spelling)
	}
}

func TestShiftHistory_UnknownEmployee(t *testing.T) {
	svc := newTestService(standardDay())

	resp, err := svc.ShiftHistory(context.Background(), punch.ShiftHistoryFilter{EmployeeID: "EMP999"})
	require.NoError(t, err)

	assert.Equal(t, "EMP999", resp.EmployeeName)
	assert.Empty(t, resp.Shifts)
}

func TestShiftHistory_WindowBounds(t *testing.T) {
	events := []punch.PunchEvent{
		// Outside the default 30-day lookback from the fixed clock.
		event("EMP001", "Budi", punch.PunchIn, 1, 9, 0, nil),
		event("EMP001", "Budi", punch.PunchOut, 1, 17, 0, nil),
		event("EMP001", "Budi", punch.PunchIn, 5, 9, 0, nil),
		event("EMP001", "Budi", punch.PunchOut, 5, 17, 0, nil),
	}

	svc := newTestService(events)
	resp, err := svc.ShiftHistory(context.Background(), punch.ShiftHistoryFilter{
		EmployeeID: "EMP001",
		StartDate:  "2025-03-05",
		EndDate:    "2025-03-05",
	})
	require.NoError(t, err)

	require.Len(t, resp.Shifts, 1)
	assert.Equal(t, "2025-03-05", resp.Shifts[0].Date)
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 8.0, roundHours(480))
	assert.Equal(t, 7.5, roundHours(450))
	assert.Equal(t, 0.02, roundHours(1))
	assert.Equal(t, 0.0, roundHours(0))
}
