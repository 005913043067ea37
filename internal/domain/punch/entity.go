package punch

import (
	"time"
)

// PunchType classifies a raw attendance record as a clock-in or clock-out.
type PunchType string

const (
	PunchIn  PunchType = "in"
	PunchOut PunchType = "out"
)

// ComplianceStatus is the discrete geofence classification of an event's
// distance from the designated site.
type ComplianceStatus string

const (
	ComplianceCompliant ComplianceStatus = "compliant"
	ComplianceWarning   ComplianceStatus = "warning"
	ComplianceBreach    ComplianceStatus = "breach"
	ComplianceUnknown   ComplianceStatus = "unknown"
)

// Severity ranks an exception for operator triage.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ExceptionType is the closed set of anomalies the detector can emit.
type ExceptionType string

const (
	ExceptionLateArrival    ExceptionType = "late_arrival"
	ExceptionOpenSession    ExceptionType = "open_session"
	ExceptionMissingPunchIn ExceptionType = "missing_punch_in"
	ExceptionLocationBreach ExceptionType = "location_breach"
)

// ExceptionStatusOpen is the only status this engine emits; resolution is an
// external workflow that owns the field from then on.
const ExceptionStatusOpen = "open"

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// PunchEvent is one normalized clock-in/clock-out record. Events are created
// once by the ingest normalizer and never mutated afterwards.
type PunchEvent struct {
	EmployeeID     string
	EmployeeName   string
	Type           PunchType
	Timestamp      time.Time
	RawLocation    string
	Coordinates    *Coordinates
	DistanceMeters *float64
}

// Date returns the event's local calendar date in YYYY-MM-DD form.
func (e PunchEvent) Date() string {
	return e.Timestamp.Format("2006-01-02")
}

// Hour returns the event's hour of day (0-23).
func (e PunchEvent) Hour() int {
	return e.Timestamp.Hour()
}

// Shift is a paired (or open) interval between a punch-in and its matched
// punch-out. Shifts are derived per query and never persisted.
type Shift struct {
	Start *PunchEvent
	// End is nil for an open session.
	End *PunchEvent
	// DurationMinutes is nil while the shift is open.
	DurationMinutes *int
	StartOnSite     bool
	EndOnSite       bool
	StartDistanceM  *float64
	EndDistanceM    *float64
}

// Open reports whether the shift has no matched punch-out.
func (s Shift) Open() bool {
	return s.End == nil
}

// Exception is a detected anomaly requiring operator attention. Exceptions
// are pure derivations of the window's events; the ID is a deterministic
// hash of (employee, type, triggering timestamp) so recomputation is
// idempotent.
type Exception struct {
	ID             string
	EmployeeID     string
	EmployeeName   string
	Type           ExceptionType
	Severity       Severity
	Status         string
	Timestamp      time.Time
	Location       string
	DistanceMeters *float64
	Note           string
}
