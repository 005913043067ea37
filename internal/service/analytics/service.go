package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/compliance"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/exception"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/shift"
)

const timestampFormat = "2006-01-02 15:04:05"

// AnalyticsServiceImpl derives every dashboard read-model from the latest
// immutable snapshot. Each call recomputes from scratch; the only state is
// the snapshot reference read from the store.
type AnalyticsServiceImpl struct {
	store      punch.SnapshotRepository
	pairer     *shift.Pairer
	classifier *compliance.Classifier
	detector   *exception.Detector

	// corrections is the same table the ingest side applies, so queried
	// employee IDs resolve against the canonical index.
	corrections map[string]string

	// now is swappable in tests; derivations must be reproducible for a
	// fixed clock.
	now func() time.Time
}

func NewAnalyticsService(
	store punch.SnapshotRepository,
	pairer *shift.Pairer,
	classifier *compliance.Classifier,
	detector *exception.Detector,
	corrections map[string]string,
) punch.AnalyticsService {
	return &AnalyticsServiceImpl{
		store:       store,
		pairer:      pairer,
		classifier:  classifier,
		detector:    detector,
		corrections: corrections,
		now:         time.Now,
	}
}

// KPISnapshot implements punch.AnalyticsService.
func (a *AnalyticsServiceImpl) KPISnapshot(ctx context.Context, filter punch.DashboardFilter) (punch.KPIResponse, error) {
	if err := filter.Validate(); err != nil {
		return punch.KPIResponse{}, err
	}

	snapshot, err := a.store.Latest()
	if err != nil {
		return punch.KPIResponse{}, err
	}

	now := a.now()
	date := a.resolveDate(filter.Date)
	events := snapshot.EventsOn(date)

	activeEmployees := make(map[string]struct{})
	withDistance, compliant := 0, 0
	for _, ev := range events {
		if ev.Type == punch.PunchIn {
			activeEmployees[ev.EmployeeID] = struct{}{}
		}
		if ev.DistanceMeters != nil {
			withDistance++
			if a.classifier.Classify(ev.DistanceMeters) == punch.ComplianceCompliant {
				compliant++
			}
		}
	}

	totalMinutes := 0
	for _, employeeEvents := range snapshot.ByEmployeeOn(date) {
		for _, s := range a.pairer.Pair(employeeEvents) {
			if s.DurationMinutes != nil {
				totalMinutes += *s.DurationMinutes
			}
		}
	}

	// No distance data means no penalty: an export without GPS columns
	// should not show the whole workforce as non-compliant.
	compliancePct := 100.0
	if withDistance > 0 {
		compliancePct = float64(compliant) / float64(withDistance) * 100
	}

	exceptions, err := a.detector.Detect(ctx, snapshot, date, now)
	if err != nil {
		return punch.KPIResponse{}, fmt.Errorf("failed to detect exceptions: %w", err)
	}
	exceptionCount := 0
	for _, ex := range exceptions {
		// Orphan punch-outs are data-quality noise and stay out of the
		// headline count; they remain visible in the exception list.
		if ex.Type != punch.ExceptionMissingPunchIn {
			exceptionCount++
		}
	}

	return punch.KPIResponse{
		ActiveEmployees:   len(activeEmployees),
		TotalWorkingHours: roundHours(totalMinutes),
		CompliancePct:     math.Round(compliancePct*10) / 10,
		ExceptionCount:    exceptionCount,
		GeneratedAt:       now.Format(timestampFormat),
	}, nil
}

// HourlyActivity implements punch.AnalyticsService.
func (a *AnalyticsServiceImpl) HourlyActivity(ctx context.Context, filter punch.HourlyFilter) (punch.HourlyActivityResponse, error) {
	if err := filter.Validate(); err != nil {
		return punch.HourlyActivityResponse{}, err
	}

	snapshot, err := a.store.Latest()
	if err != nil {
		return punch.HourlyActivityResponse{}, err
	}

	date := a.resolveDate(filter.Date)

	var inCounts, outCounts [24]int
	for _, ev := range snapshot.EventsOn(date) {
		if ev.Type == punch.PunchIn {
			inCounts[ev.Hour()]++
		} else {
			outCounts[ev.Hour()]++
		}
	}

	buckets := make([]punch.HourlyBucket, 0, filter.EndHour-filter.StartHour+1)
	for h := filter.StartHour; h <= filter.EndHour; h++ {
		buckets = append(buckets, punch.HourlyBucket{
			Hour:     fmt.Sprintf("%02d:00", h),
			InCount:  inCounts[h],
			OutCount: outCounts[h],
		})
	}

	return punch.HourlyActivityResponse{
		Buckets:     buckets,
		GeneratedAt: a.now().Format(timestampFormat),
	}, nil
}

// TopWorkload implements punch.AnalyticsService.
func (a *AnalyticsServiceImpl) TopWorkload(ctx context.Context, filter punch.WorkloadFilter) (punch.WorkloadResponse, error) {
	if err := filter.Validate(); err != nil {
		return punch.WorkloadResponse{}, err
	}

	snapshot, err := a.store.Latest()
	if err != nil {
		return punch.WorkloadResponse{}, err
	}

	date := a.resolveDate(filter.Date)

	entries := make([]punch.WorkloadEntry, 0)
	for employeeID, employeeEvents := range snapshot.ByEmployeeOn(date) {
		minutes := 0
		for _, s := range a.pairer.Pair(employeeEvents) {
			if s.DurationMinutes != nil {
				minutes += *s.DurationMinutes
			}
		}
		if minutes == 0 {
			continue
		}
		entries = append(entries, punch.WorkloadEntry{
			EmployeeID:   employeeID,
			EmployeeName: snapshot.DisplayName(employeeID),
			TotalHours:   roundHours(minutes),
		})
	}

	// Descending by hours; ties break on employee ID so reordering the
	// input never changes the ranking.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalHours != entries[j].TotalHours {
			return entries[i].TotalHours > entries[j].TotalHours
		}
		return entries[i].EmployeeID < entries[j].EmployeeID
	})
	if len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}

	return punch.WorkloadResponse{
		Entries:     entries,
		GeneratedAt: a.now().Format(timestampFormat),
	}, nil
}

// LatestLocations implements punch.AnalyticsService.
func (a *AnalyticsServiceImpl) LatestLocations(ctx context.Context, filter punch.DashboardFilter) (punch.LocationsResponse, error) {
	if err := filter.Validate(); err != nil {
		return punch.LocationsResponse{}, err
	}

	snapshot, err := a.store.Latest()
	if err != nil {
		return punch.LocationsResponse{}, err
	}

	date := a.resolveDate(filter.Date)
	grouped := snapshot.ByEmployeeOn(date)

	employeeIDs := make([]string, 0, len(grouped))
	for id := range grouped {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	locations := make([]punch.LatestLocation, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		events := grouped[id]
		last := events[len(events)-1]

		loc := punch.LatestLocation{
			EmployeeID:     id,
			EmployeeName:   snapshot.DisplayName(id),
			Location:       last.RawLocation,
			Status:         a.classifier.Classify(last.DistanceMeters),
			DistanceMeters: last.DistanceMeters,
			Timestamp:      last.Timestamp.Format(timestampFormat),
		}
		if last.Coordinates != nil {
			loc.Latitude = &last.Coordinates.Latitude
			loc.Longitude = &last.Coordinates.Longitude
		}
		locations = append(locations, loc)
	}

	return punch.LocationsResponse{
		Locations:   locations,
		GeneratedAt: a.now().Format(timestampFormat),
	}, nil
}

// ListExceptions implements punch.AnalyticsService.
func (a *AnalyticsServiceImpl) ListExceptions(ctx context.Context, filter punch.ExceptionFilter) (punch.ListExceptionsResponse, error) {
	if err := filter.Validate(); err != nil {
		return punch.ListExceptionsResponse{}, err
	}

	snapshot, err := a.store.Latest()
	if err != nil {
		return punch.ListExceptionsResponse{}, err
	}

	now := a.now()
	date := a.resolveDate(filter.Date)

	exceptions, err := a.detector.Detect(ctx, snapshot, date, now)
	if err != nil {
		return punch.ListExceptionsResponse{}, fmt.Errorf("failed to detect exceptions: %w", err)
	}

	filtered := make([]punch.Exception, 0, len(exceptions))
	for _, ex := range exceptions {
		if filter.Severity != nil && string(ex.Severity) != *filter.Severity {
			continue
		}
		if filter.Type != nil && string(ex.Type) != *filter.Type {
			continue
		}
		filtered = append(filtered, ex)
	}

	total := len(filtered)
	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := min(start+filter.Limit, total)

	responses := make([]punch.ExceptionResponse, 0, end-start)
	for _, ex := range filtered[start:end] {
		responses = append(responses, punch.ExceptionResponse{
			ID:             ex.ID,
			EmployeeID:     ex.EmployeeID,
			EmployeeName:   ex.EmployeeName,
			Type:           string(ex.Type),
			Severity:       string(ex.Severity),
			Status:         ex.Status,
			Timestamp:      ex.Timestamp.Format(timestampFormat),
			Location:       ex.Location,
			DistanceMeters: ex.DistanceMeters,
			Note:           ex.Note,
		})
	}

	return punch.ListExceptionsResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Exceptions:  responses,
		GeneratedAt: now.Format(timestampFormat),
	}, nil
}

// ShiftHistory implements punch.AnalyticsService. An employee ID with no
// events yields an empty list, not an error.
func (a *AnalyticsServiceImpl) ShiftHistory(ctx context.Context, filter punch.ShiftHistoryFilter) (punch.ShiftHistoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return punch.ShiftHistoryResponse{}, err
	}

	snapshot, err := a.store.Latest()
	if err != nil {
		return punch.ShiftHistoryResponse{}, err
	}

	now := a.now()
	endDate := filter.EndDate
	if endDate == "" {
		endDate = now.Format("2006-01-02")
	}
	startDate := filter.StartDate
	if startDate == "" {
		end, _ := time.Parse("2006-01-02", endDate)
		startDate = end.AddDate(0, 0, -30).Format("2006-01-02")
	}

	// The snapshot is keyed by canonical IDs; the query spelling may not be.
	employeeID := punch.CanonicalEmployeeID(filter.EmployeeID, a.corrections)
	events := snapshot.EmployeeEventsBetween(employeeID, startDate, endDate)

	// Shifts never span calendar dates: pairing runs within each day's
	// grouping window.
	byDate := make(map[string][]punch.PunchEvent)
	dates := make([]string, 0)
	for _, ev := range events {
		d := ev.Date()
		if _, seen := byDate[d]; !seen {
			dates = append(dates, d)
		}
		byDate[d] = append(byDate[d], ev)
	}
	// Most recent date first.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	shifts := make([]punch.ShiftResponse, 0)
	for _, d := range dates {
		dayShifts := a.pairer.Pair(byDate[d])
		// Within one day, later shifts first.
		for i := len(dayShifts) - 1; i >= 0; i-- {
			shifts = append(shifts, mapShiftToResponse(employeeID, d, dayShifts[i]))
		}
	}

	return punch.ShiftHistoryResponse{
		EmployeeID:   employeeID,
		EmployeeName: snapshot.DisplayName(employeeID),
		Shifts:       shifts,
		GeneratedAt:  now.Format(timestampFormat),
	}, nil
}

func mapShiftToResponse(employeeID, date string, s punch.Shift) punch.ShiftResponse {
	resp := punch.ShiftResponse{
		EmployeeID:  employeeID,
		Date:        date,
		StartTime:   s.Start.Timestamp.Format(timestampFormat),
		StartOnSite: s.StartOnSite,
		EndOnSite:   s.EndOnSite,
		Open:        s.Open(),
	}
	if s.End != nil {
		endTime := s.End.Timestamp.Format(timestampFormat)
		resp.EndTime = &endTime
	}
	if s.DurationMinutes != nil {
		resp.DurationMinutes = s.DurationMinutes
		hours := roundHours(*s.DurationMinutes)
		resp.WorkingHours = &hours
	}
	return resp
}

// resolveDate defaults an empty query date to today.
func (a *AnalyticsServiceImpl) resolveDate(date string) string {
	if date != "" {
		return date
	}
	return a.now().Format("2006-01-02")
}

func roundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60.0*100) / 100
}
