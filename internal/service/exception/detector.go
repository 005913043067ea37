// Package exception runs the anomaly rules over one day's punch events and
// emits severity-ranked exception records. Rules never cross employee
// boundaries, so detection shards cleanly per employee.
package exception

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/service/shift"
)

// Thresholds carries every tunable the rules read. All values come from
// deployment configuration, validated at load time.
type Thresholds struct {
	WorkStartMinutes    int // minutes past midnight
	GraceMinutes        int
	WarningDistanceM    float64
	CriticalDistanceM   float64
	OpenSessionWarning  time.Duration
	OpenSessionCritical time.Duration
}

type Detector struct {
	pairer     *shift.Pairer
	thresholds Thresholds
}

func NewDetector(pairer *shift.Pairer, thresholds Thresholds) *Detector {
	return &Detector{pairer: pairer, thresholds: thresholds}
}

// Detect evaluates every rule for every employee active on the given date
// and returns the flattened list: critical before warning, then most recent
// first. The caller supplies "now" so open-session ages are reproducible in
// tests and idempotent within one request.
func (d *Detector) Detect(ctx context.Context, snapshot *punch.Snapshot, date string, now time.Time) ([]punch.Exception, error) {
	grouped := snapshot.ByEmployeeOn(date)

	employeeIDs := make([]string, 0, len(grouped))
	for id := range grouped {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	perEmployee := make([][]punch.Exception, len(employeeIDs))
	g, _ := errgroup.WithContext(ctx)
	for i, id := range employeeIDs {
		i, id := i, id
		g.Go(func() error {
			perEmployee[i] = d.detectForEmployee(snapshot.DisplayName(id), grouped[id], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []punch.Exception
	for _, exceptions := range perEmployee {
		all = append(all, exceptions...)
	}
	sortExceptions(all)
	return all, nil
}

// detectForEmployee runs the independent rules over one employee's
// chronological events. An employee can trigger more than one exception type
// on the same day. A rule that cannot evaluate simply does not fire.
func (d *Detector) detectForEmployee(name string, events []punch.PunchEvent, now time.Time) []punch.Exception {
	var out []punch.Exception
	out = append(out, d.lateArrival(name, events)...)
	out = append(out, d.openSessions(name, events, now)...)
	out = append(out, d.orphanPunchOuts(name, events)...)
	out = append(out, d.locationBreaches(name, events)...)
	return out
}

// lateArrival fires when the first In of the day lands after work start plus
// the grace period. Lateness is measured from the scheduled start, not from
// the end of the grace period.
func (d *Detector) lateArrival(name string, events []punch.PunchEvent) []punch.Exception {
	for _, ev := range events {
		if ev.Type != punch.PunchIn {
			continue
		}
		arrival := ev.Timestamp.Hour()*60 + ev.Timestamp.Minute()
		if arrival <= d.thresholds.WorkStartMinutes+d.thresholds.GraceMinutes {
			return nil
		}
		minutesLate := arrival - d.thresholds.WorkStartMinutes
		severity := punch.SeverityWarning
		if minutesLate > 60 {
			severity = punch.SeverityCritical
		}
		return []punch.Exception{d.newException(
			name, punch.ExceptionLateArrival, severity, ev,
			fmt.Sprintf("Arrived %d minutes after scheduled start", minutesLate),
		)}
	}
	return nil
}

// openSessions fires for each In the pairer left without an Out, once the
// session age passes the warning threshold. Younger open sessions are
// normal (the employee is simply still at work) and emit nothing.
func (d *Detector) openSessions(name string, events []punch.PunchEvent, now time.Time) []punch.Exception {
	var out []punch.Exception
	for _, s := range d.pairer.Pair(events) {
		if !s.Open() {
			continue
		}
		// Fires only once the age exceeds the warning threshold; an age of
		// exactly the threshold is still a normal working day.
		elapsed := now.Sub(s.Start.Timestamp)
		if elapsed <= d.thresholds.OpenSessionWarning {
			continue
		}
		severity := punch.SeverityWarning
		if elapsed > d.thresholds.OpenSessionCritical {
			severity = punch.SeverityCritical
		}
		out = append(out, d.newException(
			name, punch.ExceptionOpenSession, severity, *s.Start,
			fmt.Sprintf("Session open for %.1f hours with no punch-out", elapsed.Hours()),
		))
	}
	return out
}

// orphanPunchOuts fires for every Out with no preceding unmatched In in the
// chronological scan. Always a warning.
func (d *Detector) orphanPunchOuts(name string, events []punch.PunchEvent) []punch.Exception {
	var out []punch.Exception
	unmatched := 0
	for _, ev := range events {
		switch ev.Type {
		case punch.PunchIn:
			unmatched++
		case punch.PunchOut:
			if unmatched > 0 {
				unmatched--
				continue
			}
			out = append(out, d.newException(
				name, punch.ExceptionMissingPunchIn, punch.SeverityWarning, ev,
				"Punch-out recorded without a matching punch-in",
			))
		}
	}
	return out
}

// locationBreaches fires for any event, paired or not, whose distance
// exceeds the warning threshold.
func (d *Detector) locationBreaches(name string, events []punch.PunchEvent) []punch.Exception {
	var out []punch.Exception
	for _, ev := range events {
		if ev.DistanceMeters == nil || *ev.DistanceMeters <= d.thresholds.WarningDistanceM {
			continue
		}
		severity := punch.SeverityWarning
		if *ev.DistanceMeters > d.thresholds.CriticalDistanceM {
			severity = punch.SeverityCritical
		}
		out = append(out, d.newException(
			name, punch.ExceptionLocationBreach, severity, ev,
			fmt.Sprintf("Punched %.0f m from the designated site (limit %.0f m)",
				*ev.DistanceMeters, d.thresholds.WarningDistanceM),
		))
	}
	return out
}

func (d *Detector) newException(name string, typ punch.ExceptionType, severity punch.Severity, trigger punch.PunchEvent, note string) punch.Exception {
	return punch.Exception{
		ID:             exceptionID(trigger.EmployeeID, typ, trigger.Timestamp),
		EmployeeID:     trigger.EmployeeID,
		EmployeeName:   name,
		Type:           typ,
		Severity:       severity,
		Status:         punch.ExceptionStatusOpen,
		Timestamp:      trigger.Timestamp,
		Location:       trigger.RawLocation,
		DistanceMeters: trigger.DistanceMeters,
		Note:           note,
	}
}

// exceptionID derives a stable identifier from the triggering facts, so two
// recomputations of the same window produce the same IDs.
func exceptionID(employeeID string, typ punch.ExceptionType, ts time.Time) string {
	seed := fmt.Sprintf("%s|%s|%s", employeeID, typ, ts.Format(time.RFC3339))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

// sortExceptions orders critical before warning, then most recent first.
// Remaining ties break on employee ID and type so the output is
// deterministic run to run.
func sortExceptions(exceptions []punch.Exception) {
	sort.SliceStable(exceptions, func(i, j int) bool {
		a, b := exceptions[i], exceptions[j]
		if a.Severity != b.Severity {
			return a.Severity == punch.SeverityCritical
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		return a.Type < b.Type
	})
}
