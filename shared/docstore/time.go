package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the document encoding for instants: UTC with fixed-width
// nanoseconds, so encoded values order the same way lexicographically as the
// instants they represent. That property is what lets both store
// implementations order and range-filter on timestamp fields as plain strings.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Time is an instant as stored in documents.
type Time struct {
	time.Time
}

// NewTime converts a time.Time into its document representation.
func NewTime(t time.Time) Time {
	return Time{Time: t.UTC()}
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(TimeLayout))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode timestamp: %w", err)
	}

	parsed, err := time.Parse(TimeLayout, raw)
	if err != nil {
		// Tolerate documents written by other clients with plain RFC 3339.
		parsed, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
		}
	}

	t.Time = parsed.UTC()

	return nil
}
