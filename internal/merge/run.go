package merge

import (
	"go.uber.org/zap"

	"ship-visuals-tools/internal/descriptor"
	"ship-visuals-tools/internal/shipcsv"
)

// Run applies set to the database file at csvPath and overwrites it.
// With an empty set the file is not read or written.
func Run(csvPath string, set descriptor.Set, log *zap.Logger) (Result, error) {
	if len(set) == 0 {
		return Result{}, nil
	}

	lines, err := shipcsv.ReadLines(csvPath)
	if err != nil {
		return Result{}, err
	}

	out, res, err := Apply(lines, set, log)
	if err != nil {
		return res, err
	}

	if err := shipcsv.WriteLines(csvPath, out); err != nil {
		return res, err
	}
	return res, nil
}
