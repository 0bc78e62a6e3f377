// Package historical transforms the static pollution dataset into cleaned,
// analysis-ready records.
package historical

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mkraev/aqwatch/internal/models"
)

// sentinelValue is the dataset's reserved marker for "no reading".
const sentinelValue = -200

const (
	dateColumn      = "date"
	timeColumn      = "time"
	timestampLayout = "02/01/2006 15:04:05"
)

// RequiredColumns are the pollutant fields a row must carry to be retained:
// carbon monoxide, nitrogen oxides and benzene.
var RequiredColumns = []string{"co_gt", "nox_gt", "c6h6_gt"}

// Stats summarizes one load for diagnostic reporting.
type Stats struct {
	Parsed   int
	Retained int
	Dropped  int
}

// Load parses the delimited file at path, derives one timestamp per row,
// rewrites the -200 sentinel to an explicit missing marker and drops rows
// missing any required pollutant field. A malformed date/time fails the whole
// load; no partial result is produced.
func Load(path, separator string) ([]models.HistoricalRecord, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()

	sep := []rune(separator)
	if len(sep) != 1 {
		return nil, Stats{}, fmt.Errorf("separator must be a single character, got %q", separator)
	}

	r := csv.NewReader(f)
	r.Comma = sep[0]
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, Stats{}, fmt.Errorf("%s: empty file", path)
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]int, len(rows[0]))
	dateIdx, timeIdx := -1, -1
	for i, name := range rows[0] {
		header[i] = NormalizeColumn(name)
		if header[i] == "" {
			continue
		}
		if prev, dup := seen[header[i]]; dup {
			return nil, Stats{}, fmt.Errorf("%s: columns %q and %q both normalize to %q", path, rows[0][prev], name, header[i])
		}
		seen[header[i]] = i
		switch header[i] {
		case dateColumn:
			dateIdx = i
		case timeColumn:
			timeIdx = i
		}
	}
	if dateIdx < 0 || timeIdx < 0 {
		return nil, Stats{}, fmt.Errorf("%s: header is missing date/time columns", path)
	}
	for _, req := range RequiredColumns {
		if !contains(header, req) {
			return nil, Stats{}, fmt.Errorf("%s: header is missing required column %q", path, req)
		}
	}

	var stats Stats
	records := make([]models.HistoricalRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		if len(row) <= dateIdx || len(row) <= timeIdx {
			return nil, Stats{}, fmt.Errorf("%s: row %d has %d fields, missing date/time columns", path, i+2, len(row))
		}
		stats.Parsed++

		ts, err := combineTimestamp(row[dateIdx], row[timeIdx])
		if err != nil {
			return nil, Stats{}, err
		}

		readings := make(map[string]*float64, len(header))
		for i, name := range header {
			if i == dateIdx || i == timeIdx || name == "" || i >= len(row) {
				continue
			}
			readings[name] = parseReading(row[i])
		}

		if missingRequired(readings) {
			stats.Dropped++
			continue
		}

		stats.Retained++
		records = append(records, models.HistoricalRecord{Timestamp: ts, Readings: readings})
	}

	return records, stats, nil
}

// NormalizeColumn rewrites a source column header into a document-safe key,
// e.g. "PT08.S1(CO)" -> "pt08_s1_co".
func NormalizeColumn(name string) string {
	var b strings.Builder
	prevUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// combineTimestamp merges a day-first date and a dot-separated time into one
// UTC timestamp.
func combineTimestamp(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.ReplaceAll(strings.TrimSpace(clock), ".", ":")

	ts, err := time.Parse(timestampLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("combine date %q time %q: %w", date, clock, err)
	}
	return ts, nil
}

// parseReading converts one raw field into a reading value. Empty fields, the
// -200 sentinel and unparseable values all map to the missing marker. Decimal
// commas are accepted.
func parseReading(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return nil
	}
	if v == sentinelValue {
		return nil
	}
	return &v
}

func missingRequired(readings map[string]*float64) bool {
	for _, req := range RequiredColumns {
		if readings[req] == nil {
			return true
		}
	}
	return false
}

func emptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
