package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Millis is a Unix timestamp in milliseconds. The zero value means the
// timestamp is absent.
type Millis int64

// FromTime converts t to Millis.
func FromTime(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// IsZero reports whether the timestamp is absent.
func (m Millis) IsZero() bool {
	return m == 0
}

// Time returns the timestamp as a time.Time in the local zone.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m))
}

// UnmarshalJSON accepts a JSON number, a numeric string or an RFC 3339
// string. null and "" decode to the zero value.
func (m *Millis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseMillis(s)
		if err != nil {
			return err
		}
		*m = v
		return nil
	}
	v, err := parseNumber(string(b))
	if err != nil {
		return fmt.Errorf("schedule: invalid timestamp %s: %w", b, err)
	}
	*m = v
	return nil
}

// ParseMillis parses a timestamp given either as epoch milliseconds or as an
// RFC 3339 date.
func ParseMillis(s string) (Millis, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := parseNumber(s); err == nil {
		return v, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("schedule: invalid timestamp %q", s)
	}
	return FromTime(t), nil
}

func parseNumber(s string) (Millis, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Millis(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %s", s)
	}
	return Millis(math.Floor(f)), nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON, so hand-written
// schedules may use dates.
func (m *Millis) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("schedule: timestamp must be a scalar, line %d", n.Line)
	}
	if n.Tag == "!!null" {
		*m = 0
		return nil
	}
	v, err := ParseMillis(n.Value)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
