// Package merge writes descriptor data into ship_visuals_database.csv rows.
package merge

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ship-visuals-tools/internal/descriptor"
	"ship-visuals-tools/internal/shipcsv"
)

// WarningKind distinguishes coordinate validation failures.
type WarningKind string

const (
	WarnOutOfBounds WarningKind = "exceeds_png_size"
	WarnNegative    WarningKind = "negative"
)

// Warning is a point that failed validation. It never blocks the write.
type Warning struct {
	ShipID string      `json:"ship_id"`
	Label  string      `json:"label"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Kind   WarningKind `json:"kind"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnOutOfBounds:
		return fmt.Sprintf("%s: Point '%s' (%s, %s) exceeds PNG size", w.ShipID, w.Label, formatCoord(w.X), formatCoord(w.Y))
	case WarnNegative:
		return fmt.Sprintf("%s: Point '%s' has negative coordinates", w.ShipID, w.Label)
	}
	return fmt.Sprintf("%s: Point '%s' %s", w.ShipID, w.Label, w.Kind)
}

// formatCoord prints a coordinate without exponent notation.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RowUpdate records what changed on one matched row.
type RowUpdate struct {
	ShipID  string   `json:"ship_id"`
	Changes []string `json:"changes"`
	// Fields is the row after the update.
	Fields []string `json:"-"`
}

// Summary joins the changes, or reports that nothing was acknowledged.
func (u RowUpdate) Summary() string {
	if len(u.Changes) == 0 {
		return "no changes"
	}
	return strings.Join(u.Changes, ", ")
}

// Result is the outcome of one Apply pass.
type Result struct {
	Updated  int         `json:"updated"`
	Rows     []RowUpdate `json:"rows"`
	Warnings []Warning   `json:"warnings"`
}

// Apply rewrites every data row, updating those whose ship id is in set.
// Blank, comment and header lines are returned untouched.
func Apply(lines []string, set descriptor.Set, log *zap.Logger) ([]string, Result, error) {
	var res Result
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		kind, fields := shipcsv.Classify(line)
		if kind != shipcsv.KindData {
			out = append(out, line)
			continue
		}

		id := shipcsv.ShipID(fields)
		d, ok := set[id]
		if !ok {
			out = append(out, shipcsv.Join(fields))
			continue
		}

		upd, warns, err := applyRow(id, fields, d)
		if err != nil {
			return nil, res, err
		}
		for _, w := range warns {
			log.Warn("⚠ WARNING "+w.String(),
				zap.String("ship", w.ShipID),
				zap.String("label", w.Label),
				zap.Float64("x", w.X),
				zap.Float64("y", w.Y))
		}
		res.Warnings = append(res.Warnings, warns...)
		res.Rows = append(res.Rows, upd)
		res.Updated++
		log.Info("✓ Updated "+id+": "+upd.Summary(), zap.String("ship", id))

		out = append(out, shipcsv.Join(upd.Fields))
	}
	return out, res, nil
}

func applyRow(id string, fields []string, d *descriptor.Descriptor) (RowUpdate, []Warning, error) {
	fields = shipcsv.Pad(fields, shipcsv.NumColumns)
	upd := RowUpdate{ShipID: id}

	// Width is written whenever given; the size change is only acknowledged
	// once height is present too.
	if s := d.SpriteSize; s.Present() {
		if s.Width != nil {
			fields[shipcsv.ColSpriteWidth] = s.Width.String()
		}
		if s.Height != nil {
			fields[shipcsv.ColSpriteHeight] = s.Height.String()
			upd.Changes = append(upd.Changes, "sprite: "+s.String())
		}
	}

	if d.HasScale() {
		sf := fmt.Sprintf("%.4f", *d.ScaleFactor)
		fields[shipcsv.ColScaleFactor] = sf
		upd.Changes = append(upd.Changes, "scale: "+sf)
	}

	warns := Validate(d)

	if d.HasPoints() {
		pts, err := d.PointsJSON()
		if err != nil {
			return upd, nil, err
		}
		fields[shipcsv.ColCoordinatePoints] = pts
		upd.Changes = append(upd.Changes, fmt.Sprintf("%d points", len(d.Points)))
	}

	upd.Fields = fields
	return upd, warns, nil
}

// Validate checks every point against png_size. Points are only checked when
// both png_size dimensions are known and the descriptor has points.
func Validate(d *descriptor.Descriptor) []Warning {
	w, h, ok := d.PNGSize.Dims()
	if !ok || len(d.Points) == 0 {
		return nil
	}

	var warns []Warning
	for _, p := range d.Points {
		if p.X > w || p.Y > h {
			warns = append(warns, Warning{ShipID: d.ShipID, Label: p.Label, X: p.X, Y: p.Y, Kind: WarnOutOfBounds})
		}
		if p.X < 0 || p.Y < 0 {
			warns = append(warns, Warning{ShipID: d.ShipID, Label: p.Label, X: p.X, Y: p.Y, Kind: WarnNegative})
		}
	}
	return warns
}
