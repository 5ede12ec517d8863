// Package schema defines the typed metadata records stored inside a
// .stella container: the root manifest and the per-level descriptor.
//
// Serialization is canonical: key order follows struct declaration order,
// absent optional fields are omitted entirely (never emitted as null), and
// the same defaults apply at construction and at parse time. This is what
// makes repacking the same inputs produce byte-identical archives.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Format constants for manifest.json.
const (
	FormatTag     = "stella.world"
	FormatVersion = 1
)

// ToolName and ToolVersion identify the generator in provenance records.
const (
	ToolName    = "stellapack"
	ToolVersion = "0.1.0"
)

// ErrParse reports malformed metadata text or a field of the wrong type.
var ErrParse = errors.New("schema: parse error")

// Axis describes the coordinate convention of the world.
type Axis struct {
	Up         string `json:"up"`
	Forward    string `json:"forward"`
	Handedness string `json:"handedness"`
}

// DefaultAxis returns the Y-up right-handed convention used by default.
func DefaultAxis() Axis {
	return Axis{Up: "Y", Forward: "-Z", Handedness: "right"}
}

// Generator records which tool produced the archive.
type Generator struct {
	Name      string  `json:"name"`
	Version   string  `json:"version"`
	GitCommit *string `json:"git_commit,omitempty"`
}

// World carries user-facing metadata about the whole archive.
type World struct {
	Title   string         `json:"title"`
	Tags    []string       `json:"tags"`
	Privacy map[string]any `json:"privacy"`
}

// LevelRef points from the manifest to one level's descriptor entry.
// ID is an opaque key; Path is archive-relative.
type LevelRef struct {
	ID   string  `json:"id"`
	Path string  `json:"path"`
	Name *string `json:"name,omitempty"`
}

// Manifest is the root metadata record (manifest.json).
//
// Level IDs are not required to be unique; the format has never enforced
// that, so Validate does not either.
type Manifest struct {
	Format     string            `json:"format"`
	Version    int               `json:"version"`
	CreatedUTC string            `json:"created_utc"`
	Units      string            `json:"units"`
	Axis       Axis              `json:"axis"`
	Levels     []LevelRef        `json:"levels"`
	Generator  *Generator        `json:"generator,omitempty"`
	World      *World            `json:"world,omitempty"`
	Assets     map[string]string `json:"assets,omitempty"`
}

// ManifestOptions controls NewManifest. Zero values fall back to defaults.
type ManifestOptions struct {
	Title     string
	Levels    []LevelRef
	Tags      []string
	Thumbnail string
}

// NewManifest builds a manifest with defaults applied: format tag and
// version constants, UTC creation time, meters, Y-up right-handed axis,
// and a single level "0" when none are given.
func NewManifest(opts ManifestOptions) *Manifest {
	levels := opts.Levels
	if len(levels) == 0 {
		name := "Floor 0"
		levels = []LevelRef{{ID: "0", Path: "levels/0/level.json", Name: &name}}
	}
	title := opts.Title
	if title == "" {
		title = "Untitled World"
	}
	tags := opts.Tags
	if tags == nil {
		tags = []string{}
	}
	m := &Manifest{
		Format:     FormatTag,
		Version:    FormatVersion,
		CreatedUTC: time.Now().UTC().Format(time.RFC3339),
		Units:      "meters",
		Axis:       DefaultAxis(),
		Levels:     levels,
		Generator:  &Generator{Name: ToolName, Version: ToolVersion},
		World: &World{
			Title:   title,
			Tags:    tags,
			Privacy: map[string]any{"contains_source_media": false},
		},
	}
	if opts.Thumbnail != "" {
		m.Assets = map[string]string{"thumbnail": opts.Thumbnail}
	}
	return m
}

// ToJSON serializes the manifest to its canonical two-space-indented form.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest decodes manifest JSON. Fields absent from the input keep
// the same defaults NewManifest applies; unknown fields are ignored so
// newer producers remain readable.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{
		Format:     FormatTag,
		Version:    FormatVersion,
		CreatedUTC: time.Now().UTC().Format(time.RFC3339),
		Units:      "meters",
		Axis:       DefaultAxis(),
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return m, nil
}

// Validate checks structural rules and returns every violation found, in
// order. It never fails; an empty slice means the manifest is valid.
func (m *Manifest) Validate() []string {
	var errs []string
	if m.Format != FormatTag {
		errs = append(errs, fmt.Sprintf("Invalid format: %s, expected '%s'", m.Format, FormatTag))
	}
	if m.Version != FormatVersion {
		errs = append(errs, fmt.Sprintf("Unsupported version: %d, expected %d", m.Version, FormatVersion))
	}
	if len(m.Levels) == 0 {
		errs = append(errs, "Manifest must contain at least one level")
	}
	for _, lvl := range m.Levels {
		if lvl.ID == "" {
			errs = append(errs, "Level missing required 'id' field")
		}
		if lvl.Path == "" {
			errs = append(errs, fmt.Sprintf("Level %s missing required 'path' field", lvl.ID))
		}
	}
	if m.Axis.Up != "Y" && m.Axis.Up != "Z" {
		errs = append(errs, fmt.Sprintf("Invalid up axis: %s", m.Axis.Up))
	}
	if m.Axis.Handedness != "left" && m.Axis.Handedness != "right" {
		errs = append(errs, fmt.Sprintf("Invalid handedness: %s", m.Axis.Handedness))
	}
	return errs
}
