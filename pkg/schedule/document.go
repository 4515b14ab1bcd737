package schedule

import (
	"encoding/json"
	"sort"
)

// Item is one piece of schedulable content.
type Item struct {
	URL string `json:"url" yaml:"url"`
	// ActivateAt is the first minute the item may be shown. Absent means the
	// item is always eligible.
	ActivateAt Millis `json:"dateTimeSchedule,omitempty" yaml:"activateAt,omitempty"`
	// ExpiresAt is the instant after which the item is dropped from the
	// document. Absent means the item never expires.
	ExpiresAt Millis `json:"expires,omitempty" yaml:"expiresAt,omitempty"`
	// Active marks the item picked by the last evaluation. It is recomputed on
	// every evaluation and never used as an input.
	Active bool `json:"active" yaml:"active"`

	// Extra keeps fields the controller sent that the screen does not
	// interpret, so they survive a round trip.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
	// Invalid names the timestamp fields that were discarded while
	// decoding because their value could not be parsed.
	Invalid []string `json:"-" yaml:"-"`
}

var itemFields = []string{"url", "dateTimeSchedule", "expires", "active"}

// UnmarshalJSON decodes an item. A timestamp that cannot be parsed is
// dropped rather than failing the whole document; its wire name is
// recorded in Invalid.
func (it *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	var p struct {
		plain
		ActivateAt json.RawMessage `json:"dateTimeSchedule"`
		ExpiresAt  json.RawMessage `json:"expires"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, itemFields)
	if err != nil {
		return err
	}
	out := Item(p.plain)
	out.Extra = extra
	out.ActivateAt = out.lenientMillis("dateTimeSchedule", p.ActivateAt)
	out.ExpiresAt = out.lenientMillis("expires", p.ExpiresAt)
	*it = out
	return nil
}

func (it *Item) lenientMillis(field string, raw json.RawMessage) Millis {
	if len(raw) == 0 {
		return 0
	}
	var m Millis
	if err := m.UnmarshalJSON(raw); err != nil {
		it.Invalid = append(it.Invalid, field)
		return 0
	}
	return m
}

func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	b, err := json.Marshal(plain(it))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, it.Extra)
}

// Document is everything a screen knows about itself: its identity and its
// schedule.
type Document struct {
	ID   ScreenID `json:"id,omitempty" yaml:"id,omitempty"`
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	// IDUpdated is stamped whenever the screen's identity changes, and on the
	// first synchronization of a document that has never been stamped.
	IDUpdated Millis `json:"idUpdated,omitempty" yaml:"idUpdated,omitempty"`
	Items     []Item `json:"items" yaml:"items"`

	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

var documentFields = []string{"id", "name", "idUpdated", "items"}

func (d *Document) UnmarshalJSON(b []byte) error {
	type plain Document
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	extra, err := splitExtra(b, documentFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*d = Document(p)
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	b, err := json.Marshal(plain(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, d.Extra)
}

// Normalize repairs a document received from the wire or from storage:
// a missing item list becomes an empty one and items are stably sorted by
// activation time, absent activation sorting first.
func Normalize(d *Document) {
	if d.Items == nil {
		d.Items = []Item{}
	}
	sort.SliceStable(d.Items, func(i, j int) bool {
		return d.Items[i].ActivateAt < d.Items[j].ActivateAt
	})
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Extra = cloneExtra(d.Extra)
	if d.Items != nil {
		c.Items = make([]Item, len(d.Items))
		for i, it := range d.Items {
			it.Extra = cloneExtra(it.Extra)
			c.Items[i] = it
		}
	}
	return &c
}

func splitExtra(b []byte, known []string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

func mergeExtra(b []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return b, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func cloneExtra(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	c := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		c[k] = append(json.RawMessage(nil), v...)
	}
	return c
}
