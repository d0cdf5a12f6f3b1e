package grid

import (
	"encoding/json"
	"testing"
)

func TestLayoutEntryJSONKeepsUnknownAttributes(t *testing.T) {
	raw := []byte(`{"i":"w1","x":1,"y":2,"w":3,"h":4,"moved":false,"static":true,"isBounded":null,"custom":{"a": 1}}`)
	var entry LayoutEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.I != "w1" || entry.X != 1 || entry.Y != 2 || entry.W != 3 || entry.H != 4 {
		t.Fatalf("unexpected geometry: %#v", entry)
	}
	if entry.Moved == nil || *entry.Moved {
		t.Fatalf("expected moved=false preserved, got %v", entry.Moved)
	}
	if entry.Static == nil || !*entry.Static {
		t.Fatalf("expected static=true")
	}
	if entry.IsBounded != nil {
		t.Fatalf("expected null to decode as undefined")
	}
	if _, ok := entry.Extra["custom"]; !ok {
		t.Fatalf("expected unknown key captured in Extra, got %#v", entry.Extra)
	}

	out, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode marshalled entry: %v", err)
	}
	if _, ok := decoded["custom"]; !ok {
		t.Fatalf("expected Extra written back, got %s", out)
	}
	if decoded["i"] != "w1" {
		t.Fatalf("expected id written, got %s", out)
	}
}

func TestLayoutsEqualStripsUndefinedValues(t *testing.T) {
	base := []LayoutEntry{{I: "a", X: 0, Y: 0, W: 6, H: 2}}
	withNulls := []LayoutEntry{{
		I: "a", X: 0, Y: 0, W: 6, H: 2,
		Extra: map[string]json.RawMessage{"minW": json.RawMessage("null"), "tag": json.RawMessage("")},
	}}
	if !LayoutsEqual(base, withNulls) {
		t.Fatalf("expected null-only extras to be ignored")
	}

	spaced := []LayoutEntry{{I: "a", X: 0, Y: 0, W: 6, H: 2, Extra: map[string]json.RawMessage{"meta": json.RawMessage(`{ "k" : 1 }`)}}}
	compact := []LayoutEntry{{I: "a", X: 0, Y: 0, W: 6, H: 2, Extra: map[string]json.RawMessage{"meta": json.RawMessage(`{"k":1}`)}}}
	if !LayoutsEqual(spaced, compact) {
		t.Fatalf("expected whitespace differences in extras to be ignored")
	}
}

func TestLayoutsEqualDetectsDefinedDifferences(t *testing.T) {
	moved := false
	a := []LayoutEntry{{I: "a", X: 0, Y: 0, W: 6, H: 2}}
	b := []LayoutEntry{{I: "a", X: 0, Y: 0, W: 6, H: 2, Moved: &moved}}
	if LayoutsEqual(a, b) {
		t.Fatalf("defined false must differ from undefined")
	}
	c := []LayoutEntry{{I: "a", X: 1, Y: 0, W: 6, H: 2}}
	if LayoutsEqual(a, c) {
		t.Fatalf("expected geometry change to be detected")
	}
	if LayoutsEqual(a, nil) {
		t.Fatalf("expected length change to be detected")
	}
	if !LayoutsEqual(nil, []LayoutEntry{}) {
		t.Fatalf("nil and empty layouts are equal")
	}
}

func TestWithoutPlaceholders(t *testing.T) {
	layout := []LayoutEntry{
		{I: "w1", W: 6, H: 2},
		{I: string(PanelEmpty), W: 6, H: 2},
		{I: "w2", W: 6, H: 2},
	}
	out := WithoutPlaceholders(layout)
	if len(out) != 2 || out[0].I != "w1" || out[1].I != "w2" {
		t.Fatalf("unexpected filtered layout: %#v", out)
	}
	if len(layout) != 3 {
		t.Fatalf("input must not be modified")
	}
}

func TestCloneLayoutIsDeep(t *testing.T) {
	minW := 2
	layout := []LayoutEntry{{I: "w1", MinW: &minW, ResizeHandles: []string{"se"}}}
	clone := CloneLayout(layout)
	*clone[0].MinW = 5
	clone[0].ResizeHandles[0] = "nw"
	if *layout[0].MinW != 2 || layout[0].ResizeHandles[0] != "se" {
		t.Fatalf("clone shares memory with original")
	}
	if CloneLayout(nil) != nil {
		t.Fatalf("nil layout should clone to nil")
	}
}
