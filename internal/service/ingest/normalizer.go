package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/utils"
)

// Logical fields the normalizer extracts from a source row. Column order in
// the export is not assumed; headers are matched case-insensitively against
// the synonym lists below. A column that cannot be resolved simply leaves
// that field absent on every row.
const (
	fieldName           = "name"
	fieldEmployeeID     = "employee_id"
	fieldType           = "type"
	fieldLocation       = "location"
	fieldTimestamp      = "timestamp"
	fieldManualLocation = "manual_location"
	fieldDistance       = "distance"
)

var columnSynonyms = map[string][]string{
	fieldName:           {"name", "employee name", "full name", "nama"},
	fieldEmployeeID:     {"employee id", "employee_id", "id", "badge id", "emp id", "nik"},
	fieldType:           {"type", "punch type", "direction", "in/out", "event"},
	fieldLocation:       {"location", "coordinates", "gps", "position"},
	fieldTimestamp:      {"timestamp", "time", "datetime", "date time", "punch time"},
	fieldManualLocation: {"manual location", "location name", "site", "branch"},
	fieldDistance:       {"distance", "distance (m)", "distance meters", "distance_m"},
}

// Timestamp layouts tried in order. The export is manually entered and
// usually day-first; ISO forms appear when rows were re-imported from other
// tools. time.Parse enforces the day 1-31 / month 1-12 range checks, so a
// value that fails one layout falls through to the next.
var timestampLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ColumnMap maps logical field names to column indexes, resolved once per
// input batch.
type ColumnMap map[string]int

// ResolveColumns matches a header row against the synonym lists.
func ResolveColumns(header []string) ColumnMap {
	cols := make(ColumnMap)
	for idx, raw := range header {
		label := strings.ToLower(strings.TrimSpace(raw))
		for field, synonyms := range columnSynonyms {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, syn := range synonyms {
				if label == syn {
					cols[field] = idx
					break
				}
			}
		}
	}
	return cols
}

// Normalizer converts one delimited row into at most one punch event. It is
// a pure function of its inputs; malformed rows yield no event and never an
// error.
type Normalizer struct {
	corrections map[string]string
	siteLat     *float64
	siteLon     *float64
}

func NewNormalizer(corrections map[string]string, siteLat, siteLon *float64) *Normalizer {
	return &Normalizer{
		corrections: corrections,
		siteLat:     siteLat,
		siteLon:     siteLon,
	}
}

// NormalizeEmployeeID canonicalizes an identifier with this deployment's
// correction table. The rules live in the punch domain so the query side
// canonicalizes lookups the same way.
func (n *Normalizer) NormalizeEmployeeID(raw string) string {
	return punch.CanonicalEmployeeID(raw, n.corrections)
}

// NormalizeRow produces zero or one event from a record. A row with no
// identifiable employee ID or no parseable timestamp is dropped.
func (n *Normalizer) NormalizeRow(record []string, cols ColumnMap) (punch.PunchEvent, bool) {
	employeeID := n.NormalizeEmployeeID(field(record, cols, fieldEmployeeID))
	if employeeID == "" {
		return punch.PunchEvent{}, false
	}

	ts, ok := parseTimestamp(field(record, cols, fieldTimestamp))
	if !ok {
		return punch.PunchEvent{}, false
	}

	locationText := field(record, cols, fieldLocation)
	manualLabel := strings.TrimSpace(field(record, cols, fieldManualLocation))

	rawLocation := manualLabel
	if rawLocation == "" {
		rawLocation = strings.TrimSpace(locationText)
	}

	coords := parseCoordinates(locationText)
	distance := parseDistance(field(record, cols, fieldDistance))
	if distance == nil {
		distance = n.deriveDistance(coords)
	}

	return punch.PunchEvent{
		EmployeeID:     employeeID,
		EmployeeName:   strings.TrimSpace(field(record, cols, fieldName)),
		Type:           classifyPunchType(field(record, cols, fieldType)),
		Timestamp:      ts,
		RawLocation:    rawLocation,
		Coordinates:    coords,
		DistanceMeters: distance,
	}, true
}

// classifyPunchType is deliberately lenient: any value containing "out"
// selects a clock-out, everything else a clock-in. The export's type column
// is free text ("OUT", "Punch out", "keluar/out"), so a strict enum parse
// would drop most rows.
func classifyPunchType(raw string) punch.PunchType {
	if strings.Contains(strings.ToLower(raw), "out") {
		return punch.PunchOut
	}
	return punch.PunchIn
}

func parseTimestamp(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseCoordinates expects exactly two numeric comma-separated tokens. Any
// deviation yields an absent coordinate, not an error.
func parseCoordinates(raw string) *punch.Coordinates {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return nil
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil
	}
	return &punch.Coordinates{Latitude: lat, Longitude: lon}
}

func parseDistance(raw string) *float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	d, err := strconv.ParseFloat(value, 64)
	if err != nil || d < 0 {
		return nil
	}
	return &d
}

// deriveDistance fills a missing distance from the row's coordinates when
// the deployment configured designated-site coordinates.
func (n *Normalizer) deriveDistance(coords *punch.Coordinates) *float64 {
	if coords == nil || n.siteLat == nil || n.siteLon == nil {
		return nil
	}
	d := utils.HaversineDistance(coords.Latitude, coords.Longitude, *n.siteLat, *n.siteLon)
	return &d
}

func field(record []string, cols ColumnMap, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}
