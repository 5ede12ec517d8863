package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestNewManifestDefaults(t *testing.T) {
	m := NewManifest(ManifestOptions{Title: "Office Scan"})

	if m.Format != FormatTag || m.Version != FormatVersion {
		t.Fatalf("format constants: %s v%d", m.Format, m.Version)
	}
	if m.Units != "meters" {
		t.Fatalf("units: %s", m.Units)
	}
	if m.Axis != DefaultAxis() {
		t.Fatalf("axis: %+v", m.Axis)
	}
	if len(m.Levels) != 1 || m.Levels[0].ID != "0" || m.Levels[0].Path != "levels/0/level.json" {
		t.Fatalf("default levels: %+v", m.Levels)
	}
	if m.World == nil || m.World.Title != "Office Scan" {
		t.Fatalf("world: %+v", m.World)
	}
	if errs := m.Validate(); len(errs) != 0 {
		t.Fatalf("fresh manifest invalid: %v", errs)
	}
}

func TestManifestJSONRoundTrip(t *testing.T) {
	m := NewManifest(ManifestOptions{
		Title:     "Two Floors",
		Tags:      []string{"office", "scan"},
		Thumbnail: "assets/thumbnail.png",
		Levels: []LevelRef{
			{ID: "0", Path: "levels/0/level.json"},
			{ID: "1", Path: "levels/1/level.json"},
		},
	})

	data, err := m.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	if got.Format != m.Format || got.Version != m.Version || got.CreatedUTC != m.CreatedUTC {
		t.Fatalf("header fields mismatch: %+v", got)
	}
	if len(got.Levels) != 2 || got.Levels[1].ID != "1" {
		t.Fatalf("levels mismatch: %+v", got.Levels)
	}
	if got.World == nil || got.World.Title != "Two Floors" || len(got.World.Tags) != 2 {
		t.Fatalf("world mismatch: %+v", got.World)
	}
	if got.Assets["thumbnail"] != "assets/thumbnail.png" {
		t.Fatalf("assets mismatch: %+v", got.Assets)
	}

	// Canonical form is stable: re-serializing the parsed value is
	// byte-identical.
	data2, err := got.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if string(data) != string(data2) {
		t.Fatalf("canonical serialization not stable")
	}
}

func TestParseManifestAppliesDefaults(t *testing.T) {
	m, err := ParseManifest([]byte(`{"format":"stella.world","version":1,"levels":[{"id":"0","path":"levels/0/level.json"}]}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.Units != "meters" {
		t.Fatalf("default units not applied: %s", m.Units)
	}
	if m.Axis != DefaultAxis() {
		t.Fatalf("default axis not applied: %+v", m.Axis)
	}
	if m.Generator != nil || m.World != nil {
		t.Fatalf("absent optionals should stay absent")
	}
}

func TestParseManifestPartialAxis(t *testing.T) {
	m, err := ParseManifest([]byte(`{"axis":{"up":"Z"},"levels":[{"id":"0","path":"p"}]}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.Axis.Up != "Z" || m.Axis.Forward != "-Z" || m.Axis.Handedness != "right" {
		t.Fatalf("partial axis merge: %+v", m.Axis)
	}
}

func TestParseManifestIgnoresUnknownFields(t *testing.T) {
	if _, err := ParseManifest([]byte(`{"format":"stella.world","version":1,"levels":[{"id":"0","path":"p"}],"future_field":{"x":1}}`)); err != nil {
		t.Fatalf("unknown field should be ignored: %v", err)
	}
}

func TestParseManifestErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"malformed", `{"format":`},
		{"wrong version type", `{"version":"one"}`},
		{"wrong levels type", `{"levels":42}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tc.in))
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestManifestValidateOrderedViolations(t *testing.T) {
	m := &Manifest{
		Format:  "wrong.format",
		Version: 2,
		Axis:    Axis{Up: "X", Forward: "-Z", Handedness: "ambidextrous"},
	}
	errs := m.Validate()
	if len(errs) != 5 {
		t.Fatalf("expected 5 violations, got %d: %v", len(errs), errs)
	}
	wantOrder := []string{"Invalid format", "Unsupported version", "at least one level", "Invalid up axis", "Invalid handedness"}
	for i, fragment := range wantOrder {
		if !strings.Contains(errs[i], fragment) {
			t.Fatalf("violation %d = %q, want fragment %q", i, errs[i], fragment)
		}
	}
}

func TestManifestValidateLevelFields(t *testing.T) {
	m := NewManifest(ManifestOptions{Levels: []LevelRef{
		{ID: "", Path: "levels/0/level.json"},
		{ID: "1", Path: ""},
	}})
	errs := m.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 violations, got %v", errs)
	}
	if !strings.Contains(errs[0], "'id'") || !strings.Contains(errs[1], "Level 1 missing required 'path'") {
		t.Fatalf("unexpected violations: %v", errs)
	}
}

func TestManifestValidateAllowsDuplicateLevelIDs(t *testing.T) {
	// Duplicate level ids have never been rejected by the format; this is
	// a documented gap, not an invariant.
	m := NewManifest(ManifestOptions{Levels: []LevelRef{
		{ID: "0", Path: "levels/0/level.json"},
		{ID: "0", Path: "levels/0b/level.json"},
	}})
	if errs := m.Validate(); len(errs) != 0 {
		t.Fatalf("duplicate ids should validate: %v", errs)
	}
}
