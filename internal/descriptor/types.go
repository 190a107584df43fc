// Package descriptor loads the per-ship coordinate JSON files produced by
// the sprite annotation tool.
package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Point is one labelled anchor on a sprite, in source PNG pixels.
// The raw JSON object is kept so re-serialization preserves key order and
// any extra keys.
type Point struct {
	X     float64
	Y     float64
	Label string

	raw json.RawMessage
}

// UnmarshalJSON keeps the original object bytes alongside the decoded fields.
func (p *Point) UnmarshalJSON(data []byte) error {
	var v struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Label string  `json:"label"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.X, p.Y, p.Label = v.X, v.Y, v.Label
	p.raw = append(p.raw[:0], data...)
	return nil
}

// MarshalJSON returns the original object when the point was decoded,
// otherwise the x/y/label fields.
func (p Point) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	return json.Marshal(struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Label string  `json:"label"`
	}{p.X, p.Y, p.Label})
}

// Size is a width/height pair. Values keep their JSON spelling so they can be
// written to the CSV without reformatting.
type Size struct {
	Width  *json.Number `json:"width,omitempty"`
	Height *json.Number `json:"height,omitempty"`
}

// Present reports whether either dimension was given.
func (s *Size) Present() bool {
	return s != nil && (s.Width != nil || s.Height != nil)
}

// Dims returns both dimensions as floats; ok is false unless both are set
// and numeric.
func (s *Size) Dims() (w, h float64, ok bool) {
	if s == nil || s.Width == nil || s.Height == nil {
		return 0, 0, false
	}
	w, err1 := s.Width.Float64()
	h, err2 := s.Height.Float64()
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return w, h, true
}

func (s *Size) String() string {
	return dim(s.Width) + "×" + dim(s.Height)
}

func dim(n *json.Number) string {
	if n == nil {
		return "?"
	}
	return n.String()
}

// Descriptor is the content of one ship JSON file.
type Descriptor struct {
	ShipID      string   `json:"ship_id"`
	Points      []Point  `json:"points"`
	SpriteSize  *Size    `json:"sprite_size,omitempty"`
	PNGSize     *Size    `json:"png_size,omitempty"`
	ScaleFactor *float64 `json:"scale_factor,omitempty"`

	// Source is the file the descriptor was read from.
	Source string `json:"-"`
}

// HasPoints reports whether the file carried a points array, even an empty one.
func (d *Descriptor) HasPoints() bool {
	return d.Points != nil
}

// HasScale reports whether the scale factor should be written.
func (d *Descriptor) HasScale() bool {
	return d.ScaleFactor != nil && *d.ScaleFactor != 0
}

// PointsJSON serializes the points array compactly, without HTML escaping.
func (d *Descriptor) PointsJSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	pts := d.Points
	if pts == nil {
		pts = []Point{}
	}
	if err := enc.Encode(pts); err != nil {
		return "", fmt.Errorf("descriptor: encode points for %s: %w", d.ShipID, err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Summary describes the descriptor for the load log.
func (d *Descriptor) Summary() string {
	info := "no size"
	if d.SpriteSize.Present() {
		info = "sprite: " + d.SpriteSize.String()
	}
	if d.PNGSize.Present() {
		info += ", PNG: " + d.PNGSize.String()
	}
	if d.HasScale() {
		info += fmt.Sprintf(", scale: %.4f", *d.ScaleFactor)
	}
	return fmt.Sprintf("%d points (%s)", len(d.Points), info)
}

// Set maps ship id to its descriptor.
type Set map[string]*Descriptor
