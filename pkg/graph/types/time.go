package types

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GraphTimeFormat is the layout the Graph API uses for timestamps.
const GraphTimeFormat = "2006-01-02T15:04:05-0700"

var timeLayouts = []string{
	GraphTimeFormat,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time is a Graph timestamp. It decodes every layout the API emits,
// including unix seconds, and encodes in GraphTimeFormat.
type Time struct {
	time.Time
}

// ParseTime parses s in any accepted layout.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Time{}, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Time{time.Unix(secs, 0).UTC()}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Time{t}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized graph time %q", s)
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}
	parsed, err := ParseTime(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Format(GraphTimeFormat))), nil
}

func (t Time) String() string {
	return t.Format(GraphTimeFormat)
}
