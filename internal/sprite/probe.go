package sprite

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ship-visuals-tools/internal/descriptor"
	"ship-visuals-tools/internal/shipcsv"
)

// SpritePaths maps ship id to the sprite_path column of each data row.
func SpritePaths(lines []string) map[string]string {
	paths := make(map[string]string)
	for _, line := range lines {
		kind, fields := shipcsv.Classify(line)
		if kind != shipcsv.KindData || len(fields) <= shipcsv.ColSpritePath {
			continue
		}
		if p := strings.TrimSpace(fields[shipcsv.ColSpritePath]); p != "" {
			paths[shipcsv.ShipID(fields)] = p
		}
	}
	return paths
}

// ProbePNGSizes fills PNGSize for descriptors that have none, reading the
// header of the ship's sprite under spriteDir. It returns how many
// descriptors were filled. Unreadable sprites are skipped.
func ProbePNGSizes(set descriptor.Set, paths map[string]string, spriteDir string, log *zap.Logger) int {
	filled := 0
	for id, d := range set {
		if _, _, ok := d.PNGSize.Dims(); ok {
			continue
		}
		rel, ok := paths[id]
		if !ok {
			continue
		}
		w, h, err := Probe(ResolvePath(spriteDir, rel))
		if err != nil {
			log.Debug("sprite probe skipped", zap.String("ship", id), zap.Error(err))
			continue
		}
		wn, hn := json.Number(strconv.Itoa(w)), json.Number(strconv.Itoa(h))
		d.PNGSize = &descriptor.Size{Width: &wn, Height: &hn}
		filled++
		log.Debug("probed sprite size", zap.String("ship", id), zap.Int("width", w), zap.Int("height", h))
	}
	return filled
}

// ResolvePath joins a sprite_path column value onto spriteDir unless it is
// already absolute.
func ResolvePath(spriteDir, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(spriteDir, rel)
}
