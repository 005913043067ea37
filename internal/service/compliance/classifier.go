// Package compliance maps an event's distance from the designated site to a
// discrete geofence status.
package compliance

import (
	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
)

// Classifier holds the deployment's distance thresholds. Thresholds are
// configuration, never constants at call sites.
type Classifier struct {
	compliantDistanceM float64
	warningDistanceM   float64
}

func NewClassifier(compliantDistanceM, warningDistanceM float64) *Classifier {
	return &Classifier{
		compliantDistanceM: compliantDistanceM,
		warningDistanceM:   warningDistanceM,
	}
}

// Classify is a pure function from distance to status. A missing distance is
// unknown, not a violation.
func (c *Classifier) Classify(distanceMeters *float64) punch.ComplianceStatus {
	switch {
	case distanceMeters == nil:
		return punch.ComplianceUnknown
	case *distanceMeters <= c.compliantDistanceM:
		return punch.ComplianceCompliant
	case *distanceMeters <= c.warningDistanceM:
		return punch.ComplianceWarning
	default:
		return punch.ComplianceBreach
	}
}
