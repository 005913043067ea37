// Package shift pairs one employee's chronological punch events into work
// shifts using FIFO matching: each In is matched to the next unconsumed Out.
// FIFO is the simplest policy that stays monotonic and explainable to an
// operator; when an employee double-punches, a stray punch can pair with the
// wrong shift. That is a known limitation, not something to patch over with
// heuristics.
package shift

import (
	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
)

// Pairer converts in/out events into shift intervals. The compliant
// threshold drives the per-endpoint on-site flag only; full classification
// is the compliance package's job.
type Pairer struct {
	compliantDistanceM float64
}

func NewPairer(compliantDistanceM float64) *Pairer {
	return &Pairer{compliantDistanceM: compliantDistanceM}
}

// Pair scans one employee's chronologically sorted events. Each In consumes
// the first following Out; an In with no Out left becomes an open shift. An
// Out with no prior unmatched In is skipped here; the exception detector
// reports it as a punch-out without punch-in.
func (p *Pairer) Pair(events []punch.PunchEvent) []punch.Shift {
	var shifts []punch.Shift

	i := 0
	for i < len(events) {
		if events[i].Type != punch.PunchIn {
			i++
			continue
		}

		start := events[i]
		matched := -1
		for j := i + 1; j < len(events); j++ {
			if events[j].Type == punch.PunchOut {
				matched = j
				break
			}
		}

		if matched == -1 {
			shifts = append(shifts, p.openShift(start))
			i++
			continue
		}

		end := events[matched]
		shifts = append(shifts, p.closedShift(start, end))
		i = matched + 1
	}

	return shifts
}

func (p *Pairer) openShift(start punch.PunchEvent) punch.Shift {
	s := start
	return punch.Shift{
		Start:          &s,
		StartOnSite:    p.onSite(start.DistanceMeters),
		StartDistanceM: start.DistanceMeters,
	}
}

func (p *Pairer) closedShift(start, end punch.PunchEvent) punch.Shift {
	s, e := start, end
	// Chronological input ordering guarantees this is never negative.
	minutes := int(end.Timestamp.Sub(start.Timestamp).Minutes())
	return punch.Shift{
		Start:           &s,
		End:             &e,
		DurationMinutes: &minutes,
		StartOnSite:     p.onSite(start.DistanceMeters),
		EndOnSite:       p.onSite(end.DistanceMeters),
		StartDistanceM:  start.DistanceMeters,
		EndDistanceM:    end.DistanceMeters,
	}
}

// onSite treats a missing distance as off-site for the boolean flag; the
// classifier reports it as unknown separately.
func (p *Pairer) onSite(distance *float64) bool {
	return distance != nil && *distance <= p.compliantDistanceM
}
