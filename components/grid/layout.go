package grid

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// LayoutEntry is one panel placement on the grid. Optional attributes are
// pointers; nil means the renderer left them undefined.
type LayoutEntry struct {
	I string `json:"i"`
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`

	MinW *int `json:"minW,omitempty"`
	MaxW *int `json:"maxW,omitempty"`
	MinH *int `json:"minH,omitempty"`
	MaxH *int `json:"maxH,omitempty"`

	Moved       *bool `json:"moved,omitempty"`
	Static      *bool `json:"static,omitempty"`
	IsDraggable *bool `json:"isDraggable,omitempty"`
	IsResizable *bool `json:"isResizable,omitempty"`
	IsBounded   *bool `json:"isBounded,omitempty"`

	ResizeHandles []string `json:"resizeHandles,omitempty"`

	// Extra keeps attributes this package does not model so they survive a
	// load/save round trip.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownLayoutKeys = map[string]struct{}{
	"i": {}, "x": {}, "y": {}, "w": {}, "h": {},
	"minW": {}, "maxW": {}, "minH": {}, "maxH": {},
	"moved": {}, "static": {}, "isDraggable": {}, "isResizable": {}, "isBounded": {},
	"resizeHandles": {},
}

type layoutEntryAlias LayoutEntry

// UnmarshalJSON decodes the modelled keys and collects the rest into Extra.
func (e *LayoutEntry) UnmarshalJSON(data []byte) error {
	var alias layoutEntryAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if _, ok := knownLayoutKeys[key]; ok {
			continue
		}
		if alias.Extra == nil {
			alias.Extra = make(map[string]json.RawMessage)
		}
		alias.Extra[key] = value
	}
	*e = LayoutEntry(alias)
	return nil
}

// MarshalJSON writes modelled keys plus Extra. Modelled keys win on conflict.
func (e LayoutEntry) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(layoutEntryAlias(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return base, nil
	}
	merged := make(map[string]json.RawMessage, len(e.Extra)+5)
	for key, value := range e.Extra {
		merged[key] = value
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	for key, value := range known {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// NormalizeLayout returns a copy of layout with undefined values stripped:
// null or empty extras are dropped, extras are compacted, and empty
// collections collapse to nil. The result is never nil.
func NormalizeLayout(layout []LayoutEntry) []LayoutEntry {
	out := make([]LayoutEntry, 0, len(layout))
	for _, entry := range layout {
		out = append(out, normalizeEntry(entry))
	}
	return out
}

func normalizeEntry(entry LayoutEntry) LayoutEntry {
	entry = cloneEntry(entry)
	if len(entry.ResizeHandles) == 0 {
		entry.ResizeHandles = nil
	}
	if len(entry.Extra) == 0 {
		entry.Extra = nil
		return entry
	}
	extra := make(map[string]json.RawMessage, len(entry.Extra))
	for key, value := range entry.Extra {
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			trimmed = buf.Bytes()
		}
		extra[key] = json.RawMessage(trimmed)
	}
	if len(extra) == 0 {
		extra = nil
	}
	entry.Extra = extra
	return entry
}

// LayoutsEqual reports whether a and b carry the same content once undefined
// values are stripped.
func LayoutsEqual(a, b []LayoutEntry) bool {
	if len(a) != len(b) {
		return false
	}
	return reflect.DeepEqual(NormalizeLayout(a), NormalizeLayout(b))
}

// WithoutPlaceholders drops entries standing in for a panel that is still
// being added.
func WithoutPlaceholders(layout []LayoutEntry) []LayoutEntry {
	out := make([]LayoutEntry, 0, len(layout))
	for _, entry := range layout {
		if entry.I == string(PanelEmpty) {
			continue
		}
		out = append(out, cloneEntry(entry))
	}
	return out
}

// CloneLayout deep copies layout. A nil layout stays nil.
func CloneLayout(layout []LayoutEntry) []LayoutEntry {
	if layout == nil {
		return nil
	}
	out := make([]LayoutEntry, len(layout))
	for i, entry := range layout {
		out[i] = cloneEntry(entry)
	}
	return out
}

func cloneEntry(entry LayoutEntry) LayoutEntry {
	entry.MinW = cloneInt(entry.MinW)
	entry.MaxW = cloneInt(entry.MaxW)
	entry.MinH = cloneInt(entry.MinH)
	entry.MaxH = cloneInt(entry.MaxH)
	entry.Moved = cloneBool(entry.Moved)
	entry.Static = cloneBool(entry.Static)
	entry.IsDraggable = cloneBool(entry.IsDraggable)
	entry.IsResizable = cloneBool(entry.IsResizable)
	entry.IsBounded = cloneBool(entry.IsBounded)
	if entry.ResizeHandles != nil {
		entry.ResizeHandles = append([]string(nil), entry.ResizeHandles...)
	}
	if entry.Extra != nil {
		extra := make(map[string]json.RawMessage, len(entry.Extra))
		for key, value := range entry.Extra {
			extra[key] = append(json.RawMessage(nil), value...)
		}
		entry.Extra = extra
	}
	return entry
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
