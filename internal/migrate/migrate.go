// Package migrate upgrades ship_visuals_database.csv to the 14-column schema
// and clears every coordinate_points value.
package migrate

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"ship-visuals-tools/internal/shipcsv"
)

// Stats counts what one run changed.
type Stats struct {
	Migrated int // legacy rows that gained a scale_factor column
	Cleared  int // rows whose coordinate_points were reset to []
	Rows     int // data rows seen
}

// Transform applies the migration to every line and returns the new lines.
// Blank, comment and header lines are returned untouched.
func Transform(lines []string, log *zap.Logger) ([]string, Stats) {
	var st Stats
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		kind, fields := shipcsv.Classify(line)
		if kind != shipcsv.KindData {
			out = append(out, line)
			continue
		}
		st.Rows++

		if len(fields) == shipcsv.LegacyColumns {
			fields = slices.Insert(fields, shipcsv.ColScaleFactor, "")
			st.Migrated++
			log.Info("added scale_factor column", zap.String("ship", fields[shipcsv.ColShipID]))
		}

		fields = shipcsv.Pad(fields, shipcsv.NumColumns)

		pts := fields[shipcsv.ColCoordinatePoints]
		if strings.TrimSpace(pts) != "" && pts != shipcsv.EmptyPoints {
			fields[shipcsv.ColCoordinatePoints] = shipcsv.EmptyPoints
			st.Cleared++
			log.Info("cleared coordinates", zap.String("ship", fields[shipcsv.ColShipID]))
		}

		out = append(out, shipcsv.Join(fields))
	}
	return out, st
}

// Run migrates the file at path in place.
func Run(path string, log *zap.Logger) (Stats, error) {
	lines, err := shipcsv.ReadLines(path)
	if err != nil {
		return Stats{}, err
	}

	out, st := Transform(lines, log)

	if err := shipcsv.WriteLines(path, out); err != nil {
		return st, err
	}
	return st, nil
}
