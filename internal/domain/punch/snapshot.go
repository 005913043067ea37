package punch

import (
	"sort"
	"time"
)

// Snapshot is the in-memory index built from one batch of normalized events.
// It is immutable after construction: every derivation (pairing, exceptions,
// aggregates) reads from it without locking, and a refresh swaps in a whole
// new snapshot rather than mutating this one.
type Snapshot struct {
	// Events in chronological order. Ties on the timestamp keep the
	// original input order (stable sort), which makes every derivation
	// deterministic for identical input.
	Events []PunchEvent

	byEmployee map[string][]PunchEvent
	byDate     map[string][]PunchEvent
	names      map[string]string

	FetchedAt   time.Time
	DroppedRows int
}

// NewSnapshot indexes a batch of normalized events. The input order is
// arbitrary; droppedRows is the count of source rows the normalizer had to
// discard, carried along for observability only.
func NewSnapshot(events []PunchEvent, fetchedAt time.Time, droppedRows int) *Snapshot {
	ordered := make([]PunchEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	s := &Snapshot{
		Events:      ordered,
		byEmployee:  make(map[string][]PunchEvent),
		byDate:      make(map[string][]PunchEvent),
		names:       make(map[string]string),
		FetchedAt:   fetchedAt,
		DroppedRows: droppedRows,
	}

	for _, ev := range ordered {
		s.byEmployee[ev.EmployeeID] = append(s.byEmployee[ev.EmployeeID], ev)
		s.byDate[ev.Date()] = append(s.byDate[ev.Date()], ev)
		s.recordName(ev.EmployeeID, ev.EmployeeName)
	}
	return s
}

// recordName keeps the best-known display name per employee: a later
// non-empty name may replace a placeholder (empty or equal to the ID), but a
// good name is never replaced by an empty one.
func (s *Snapshot) recordName(employeeID, name string) {
	if employeeID == "" {
		return
	}
	current, seen := s.names[employeeID]
	if !seen {
		s.names[employeeID] = name
		return
	}
	if name == "" {
		return
	}
	if current == "" || current == employeeID {
		s.names[employeeID] = name
	}
}

// DisplayName resolves an employee's best-known display name, falling back
// to the ID itself.
func (s *Snapshot) DisplayName(employeeID string) string {
	if name, ok := s.names[employeeID]; ok && name != "" {
		return name
	}
	return employeeID
}

// EventsOn returns the chronological events for one calendar date
// (YYYY-MM-DD). The returned slice is shared with the snapshot and must not
// be modified.
func (s *Snapshot) EventsOn(date string) []PunchEvent {
	return s.byDate[date]
}

// EmployeeEvents returns one employee's full chronological event list.
func (s *Snapshot) EmployeeEvents(employeeID string) []PunchEvent {
	return s.byEmployee[employeeID]
}

// ByEmployeeOn groups one date's events per employee, preserving
// chronological order within each group.
func (s *Snapshot) ByEmployeeOn(date string) map[string][]PunchEvent {
	grouped := make(map[string][]PunchEvent)
	for _, ev := range s.byDate[date] {
		grouped[ev.EmployeeID] = append(grouped[ev.EmployeeID], ev)
	}
	return grouped
}

// EmployeeEventsBetween returns one employee's events whose local date falls
// within [startDate, endDate], both inclusive YYYY-MM-DD strings.
func (s *Snapshot) EmployeeEventsBetween(employeeID, startDate, endDate string) []PunchEvent {
	var out []PunchEvent
	for _, ev := range s.byEmployee[employeeID] {
		d := ev.Date()
		if d >= startDate && d <= endDate {
			out = append(out, ev)
		}
	}
	return out
}
