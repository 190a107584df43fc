package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// ErrMissingShipID marks a descriptor file without a usable ship_id.
var ErrMissingShipID = errors.New("missing ship_id")

// FileResult is the load outcome of one JSON file.
type FileResult struct {
	Path   string `json:"path"`
	ShipID string `json:"ship_id,omitempty"`
	Points int    `json:"points"`
	Err    error  `json:"-"`
}

// OK reports whether the file was loaded into the set.
func (r FileResult) OK() bool { return r.Err == nil }

// LoadDir reads every *.json file in dir. A missing dir is created and yields
// an empty set. Files that fail to parse or have no ship_id are reported in
// the results and skipped; only directory-level failures return an error.
// Files are read in name order, so a later file wins a duplicate ship_id.
func LoadDir(dir string, log *zap.Logger) (Set, []FileResult, error) {
	set := make(Set)

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		log.Info("creating descriptor directory", zap.String("dir", dir))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("descriptor: create %s: %w", dir, err)
		}
		return set, nil, nil
	} else if err != nil {
		return nil, nil, fmt.Errorf("descriptor: stat %s: %w", dir, err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("descriptor: glob %s: %w", dir, err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		log.Info("no JSON files found", zap.String("dir", dir))
		return set, nil, nil
	}
	log.Info("found JSON files", zap.Int("count", len(files)))

	results := make([]FileResult, 0, len(files))
	for _, path := range files {
		res := FileResult{Path: path}
		d, err := LoadFile(path)
		if err != nil {
			res.Err = err
			log.Warn("✗ "+filepath.Base(path), zap.Error(err))
			results = append(results, res)
			continue
		}
		res.ShipID = d.ShipID
		res.Points = len(d.Points)
		results = append(results, res)

		if prev, ok := set[d.ShipID]; ok {
			log.Debug("duplicate ship_id, later file wins",
				zap.String("ship", d.ShipID),
				zap.String("previous", filepath.Base(prev.Source)))
		}
		set[d.ShipID] = d
		log.Info("✓ "+filepath.Base(path)+": "+d.Summary(), zap.String("ship", d.ShipID))
	}

	return set, results, nil
}

// LoadFile parses one descriptor file.
func LoadFile(path string) (*Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: read %s: %w", path, err)
	}

	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("descriptor: parse %s: %w", path, err)
	}
	if d.ShipID == "" {
		return nil, fmt.Errorf("descriptor: %s: %w", path, ErrMissingShipID)
	}
	d.Source = path
	return &d, nil
}
