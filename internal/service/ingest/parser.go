package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"time"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
)

// ParseBatch decodes one CSV export into an indexed snapshot. The first line
// must be a header row; columns are resolved once for the whole batch.
// Malformed rows are dropped and counted, never fatal; an unreadable or
// empty input simply yields an empty snapshot.
func (n *Normalizer) ParseBatch(data []byte, fetchedAt time.Time) *punch.Snapshot {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return punch.NewSnapshot(nil, fetchedAt, 0)
	}
	cols := ResolveColumns(header)

	var events []punch.PunchEvent
	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Corrupted quoting or encoding on this line only.
			dropped++
			continue
		}
		event, ok := n.NormalizeRow(record, cols)
		if !ok {
			dropped++
			continue
		}
		events = append(events, event)
	}

	return punch.NewSnapshot(events, fetchedAt, dropped)
}
