package punch

import (
	"strings"

	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/validator"
)

// ========================================
// DASHBOARD DTOs
// ========================================

type KPIResponse struct {
	ActiveEmployees   int     `json:"active_employees"`
	TotalWorkingHours float64 `json:"total_working_hours"`
	CompliancePct     float64 `json:"on_site_compliance_pct"`
	ExceptionCount    int     `json:"exception_count"`
	GeneratedAt       string  `json:"generated_at"`
}

type HourlyBucket struct {
	Hour     string `json:"hour"` // "07:00"
	InCount  int    `json:"in_count"`
	OutCount int    `json:"out_count"`
}

type HourlyActivityResponse struct {
	Buckets     []HourlyBucket `json:"buckets"`
	GeneratedAt string         `json:"generated_at"`
}

type WorkloadEntry struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	TotalHours   float64 `json:"total_hours"`
}

type WorkloadResponse struct {
	Entries     []WorkloadEntry `json:"entries"`
	GeneratedAt string          `json:"generated_at"`
}

type LatestLocation struct {
	EmployeeID     string           `json:"employee_id"`
	EmployeeName   string           `json:"employee_name"`
	Latitude       *float64         `json:"latitude,omitempty"`
	Longitude      *float64         `json:"longitude,omitempty"`
	Location       string           `json:"location"`
	Status         ComplianceStatus `json:"status"`
	DistanceMeters *float64         `json:"distance_meters,omitempty"`
	Timestamp      string           `json:"timestamp"`
}

type LocationsResponse struct {
	Locations   []LatestLocation `json:"locations"`
	GeneratedAt string           `json:"generated_at"`
}

// ========================================
// EXCEPTION DTOs
// ========================================

type ExceptionResponse struct {
	ID             string   `json:"id"`
	EmployeeID     string   `json:"employee_id"`
	EmployeeName   string   `json:"employee_name"`
	Type           string   `json:"type"`
	Severity       string   `json:"severity"`
	Status         string   `json:"status"`
	Timestamp      string   `json:"timestamp"`
	Location       string   `json:"location"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	Note           string   `json:"note"`
}

type ListExceptionsResponse struct {
	TotalCount  int                 `json:"total_count"`
	Page        int                 `json:"page"`
	Limit       int                 `json:"limit"`
	TotalPages  int                 `json:"total_pages"`
	Exceptions  []ExceptionResponse `json:"exceptions"`
	GeneratedAt string              `json:"generated_at"`
}

// ========================================
// SHIFT HISTORY DTOs
// ========================================

type ShiftResponse struct {
	EmployeeID      string   `json:"employee_id"`
	Date            string   `json:"date"`
	StartTime       string   `json:"start_time"`
	EndTime         *string  `json:"end_time,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	WorkingHours    *float64 `json:"working_hours,omitempty"`
	StartOnSite     bool     `json:"start_on_site"`
	EndOnSite       bool     `json:"end_on_site"`
	Open            bool     `json:"open"`
}

type ShiftHistoryResponse struct {
	EmployeeID   string          `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Shifts       []ShiftResponse `json:"shifts"`
	GeneratedAt  string          `json:"generated_at"`
}

// ========================================
// QUERY FILTERS
// ========================================

// DashboardFilter selects the calendar date a derivation runs over. An empty
// date means "today" and is filled in by the service.
type DashboardFilter struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD
}

func (f *DashboardFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != "" {
		if _, valid := validator.IsValidDate(f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type HourlyFilter struct {
	Date      string `json:"date,omitempty"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

func (f *HourlyFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != "" {
		if _, valid := validator.IsValidDate(f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.StartHour < 0 || f.StartHour > 23 {
		errs = append(errs, validator.ValidationError{
			Field:   "start_hour",
			Message: "start_hour must be between 0 and 23",
		})
	}
	if f.EndHour < 0 || f.EndHour > 23 {
		errs = append(errs, validator.ValidationError{
			Field:   "end_hour",
			Message: "end_hour must be between 0 and 23",
		})
	}
	if f.StartHour > f.EndHour {
		errs = append(errs, validator.ValidationError{
			Field:   "start_hour",
			Message: "start_hour must not be after end_hour",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WorkloadFilter struct {
	Date  string `json:"date,omitempty"`
	Limit int    `json:"limit"`
}

func (f *WorkloadFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != "" {
		if _, valid := validator.IsValidDate(f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 5 // Default limit
	}
	if f.Limit > 50 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 50",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ExceptionFilter struct {
	Date     string  `json:"date,omitempty"`
	Severity *string `json:"severity,omitempty"`
	Type     *string `json:"type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ExceptionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != "" {
		if _, valid := validator.IsValidDate(f.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Severity != nil {
		// Matching downstream is exact; normalize the case here once.
		*f.Severity = strings.ToLower(*f.Severity)
		validSeverities := []string{string(SeverityWarning), string(SeverityCritical)}
		if !validator.IsInSlice(*f.Severity, validSeverities) {
			errs = append(errs, validator.ValidationError{
				Field:   "severity",
				Message: "severity must be one of: warning, critical",
			})
		}
	}

	if f.Type != nil {
		*f.Type = strings.ToLower(*f.Type)
		validTypes := []string{
			string(ExceptionLateArrival),
			string(ExceptionOpenSession),
			string(ExceptionMissingPunchIn),
			string(ExceptionLocationBreach),
		}
		if !validator.IsInSlice(*f.Type, validTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "type",
				Message: "type must be one of: late_arrival, open_session, missing_punch_in, location_breach",
			})
		}
	}

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftHistoryFilter struct {
	EmployeeID string `json:"-"`
	StartDate  string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

func (f *ShiftHistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if f.StartDate != "" {
		if _, valid := validator.IsValidDate(f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != "" {
		if _, valid := validator.IsValidDate(f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must not be after end_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RefreshResponse struct {
	EventCount  int    `json:"event_count"`
	DroppedRows int    `json:"dropped_rows"`
	FetchedAt   string `json:"fetched_at"`
}
