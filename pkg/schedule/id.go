package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ScreenID identifies a screen. Controllers send it either as a JSON string
// or as a JSON number; both forms decode to the same textual value.
type ScreenID string

// UnmarshalJSON decodes a string or number id. null decodes to "".
func (id *ScreenID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ScreenID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("schedule: invalid screen id %s", b)
		}
		*id = ScreenID(n.String())
	}
	return nil
}

// UnmarshalYAML accepts any scalar as the id text.
func (id *ScreenID) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("schedule: invalid screen id at line %d", n.Line)
	}
	if n.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = ScreenID(n.Value)
	return nil
}

// MarshalJSON encodes canonical integers as JSON numbers so the controller
// gets back the type it sent; everything else is encoded as a string.
func (id ScreenID) MarshalJSON() ([]byte, error) {
	if id.isCanonicalInt() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ScreenID) isCanonicalInt() bool {
	s := string(id)
	if s == "" {
		return false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return false
	}
	return strconv.FormatInt(v, 10) == s
}
