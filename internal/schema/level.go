package schema

import (
	"encoding/json"
	"fmt"
)

// LevelVersion is the supported level.json format version.
const LevelVersion = 1

// PlayerCapsule holds the player collision capsule parameters embedded in
// a collision asset reference.
type PlayerCapsule struct {
	HeightM     float64 `json:"height_m"`
	RadiusM     float64 `json:"radius_m"`
	StepHeightM float64 `json:"step_height_m"`
}

// DefaultPlayerCapsule returns the standing-adult capsule used by default.
func DefaultPlayerCapsule() PlayerCapsule {
	return PlayerCapsule{HeightM: 1.7, RadiusM: 0.3, StepHeightM: 0.35}
}

// Spawn defines where the player enters the level.
type Spawn struct {
	Position   [3]float64 `json:"position"`
	YawDegrees float64    `json:"yaw_degrees"`
}

// RenderAsset references the opaque render payload for a level.
type RenderAsset struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// CollisionAsset references the collision payload and the capsule tested
// against it.
type CollisionAsset struct {
	Type   string        `json:"type"`
	URI    string        `json:"uri"`
	Player PlayerCapsule `json:"player"`
}

// NavigationAsset references an optional navigation payload.
type NavigationAsset struct {
	Type string  `json:"type"`
	URI  *string `json:"uri,omitempty"`
}

// Capture records how the level's source material was acquired.
type Capture struct {
	Source    string  `json:"source"`
	SourceFPS *int    `json:"source_fps,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// Level is the per-level descriptor (levels/<id>/level.json). It is written
// once by the producing pipeline; the packer stores it verbatim.
type Level struct {
	LevelVersion int                `json:"level_version"`
	Name         string             `json:"name"`
	Scale        map[string]float64 `json:"scale"`
	Spawn        Spawn              `json:"spawn"`
	Render       RenderAsset        `json:"render"`
	Collision    CollisionAsset     `json:"collision"`
	Navigation   NavigationAsset    `json:"navigation"`
	Capture      *Capture           `json:"capture,omitempty"`
}

// LevelOptions controls NewLevel. Zero values fall back to defaults.
type LevelOptions struct {
	Name          string
	SpawnPosition *[3]float64
	PlayerHeightM float64
	RenderURI     string
	CollisionURI  string
}

// NewLevel builds a level descriptor with defaults: 1 m per unit, spawn at
// eye height above the origin, glb render and rlevox collision references.
func NewLevel(opts LevelOptions) *Level {
	l := defaultLevel()
	if opts.Name != "" {
		l.Name = opts.Name
	}
	if opts.PlayerHeightM > 0 {
		l.Collision.Player.HeightM = opts.PlayerHeightM
		l.Spawn.Position[1] = opts.PlayerHeightM
	}
	if opts.SpawnPosition != nil {
		l.Spawn.Position = *opts.SpawnPosition
	}
	if opts.RenderURI != "" {
		l.Render.URI = opts.RenderURI
	}
	if opts.CollisionURI != "" {
		l.Collision.URI = opts.CollisionURI
	}
	return l
}

func defaultLevel() *Level {
	return &Level{
		LevelVersion: LevelVersion,
		Name:         "Level 0",
		Scale:        map[string]float64{"meters_per_unit": 1.0},
		Spawn:        Spawn{Position: [3]float64{0, 1.7, 0}},
		Render:       RenderAsset{Type: "glb", URI: "render.glb"},
		Collision:    CollisionAsset{Type: "rlevox", URI: "collision.rlevox", Player: DefaultPlayerCapsule()},
		Navigation:   NavigationAsset{Type: "none"},
	}
}

// ToJSON serializes the level descriptor to its canonical indented form.
func (l *Level) ToJSON() ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// ParseLevel decodes level JSON, filling absent fields with the NewLevel
// defaults. Unknown fields are ignored.
func ParseLevel(data []byte) (*Level, error) {
	l := defaultLevel()
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return l, nil
}
