package normalize

import (
	"strings"
	"time"
)

// Source temporal columns are free-form text, so parsing tries a fixed list
// of layouts in order. Layouts without a zone are interpreted as UTC.
// time.Parse accepts fractional seconds even when the layout omits them, so
// one layout per shape is enough.
var temporalLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05Z07:00"
)

// parseTemporal attempts each layout in order and returns the first match.
func parseTemporal(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate renders a free-form temporal string as a canonical "YYYY-MM-DD"
// date. Datetime input is accepted; its date part is kept. ok is false when
// no layout matches.
func ParseDate(raw string) (string, bool) {
	t, ok := parseTemporal(raw)
	if !ok {
		return "", false
	}
	return t.UTC().Format(dateLayout), true
}

// ParseTimestamp renders a free-form temporal string as a canonical UTC
// "YYYY-MM-DDTHH:MM:SSZ" timestamp. Zoned input is converted to UTC;
// date-only input becomes midnight UTC. ok is false when no layout matches.
func ParseTimestamp(raw string) (string, bool) {
	t, ok := parseTemporal(raw)
	if !ok {
		return "", false
	}
	return t.UTC().Format(timestampLayout), true
}
