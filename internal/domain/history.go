package domain

import (
	"strings"
	"time"
)

// HistoryEntry is one resolved query. Entries are never mutated after creation.
type HistoryEntry struct {
	Query      string
	Resolution string
	Timestamp  string
	Metadata   map[string]string
}

func NewHistoryEntry(query, resolution, timestamp string, metadata map[string]string) (HistoryEntry, error) {
	entry := HistoryEntry{
		Query:      query,
		Resolution: resolution,
		Timestamp:  timestamp,
		Metadata:   copyMetadata(metadata),
	}
	if err := entry.Validate(); err != nil {
		return HistoryEntry{}, err
	}

	return entry, nil
}

func (e HistoryEntry) Validate() error {
	if strings.TrimSpace(e.Query) == "" {
		return invalid("history query", "query is required")
	}
	if strings.TrimSpace(e.Resolution) == "" {
		return invalid("history resolution", "resolution is required")
	}
	if strings.TrimSpace(e.Timestamp) == "" {
		return invalid("history timestamp", "timestamp is required")
	}
	if _, err := ParseTimestamp(e.Timestamp); err != nil {
		return err
	}

	return nil
}

func (e HistoryEntry) Meta(key string) string {
	return e.Metadata[key]
}

func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// timestampLayouts accepts RFC 3339 plus zone-less ISO-8601 as written by older stores.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func ParseTimestamp(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, invalid("timestamp", "expected ISO-8601 timestamp, got "+raw)
}

func copyMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return map[string]string{}
	}

	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
