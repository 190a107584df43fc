// Package report writes the JSON manifest of a merge run.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"ship-visuals-tools/internal/descriptor"
	"ship-visuals-tools/internal/merge"
	"ship-visuals-tools/internal/sprite"
)

// FileEntry is the load outcome of one descriptor file.
type FileEntry struct {
	File   string `json:"file"`
	ShipID string `json:"ship_id,omitempty"`
	Points int    `json:"points"`
	Error  string `json:"error,omitempty"`
}

// Manifest summarizes one merge run.
type Manifest struct {
	Generated string            `json:"generated"`
	Database  string            `json:"database"`
	Updated   int               `json:"updated"`
	Ships     []merge.RowUpdate `json:"ships"`
	Warnings  []merge.Warning   `json:"warnings"`
	Files     []FileEntry       `json:"files"`
	Previews  []sprite.Result   `json:"previews,omitempty"`
}

// Build assembles a manifest from the results of a run.
func Build(database string, res merge.Result, files []descriptor.FileResult, previews []sprite.Result) Manifest {
	m := Manifest{
		Generated: time.Now().UTC().Format(time.RFC3339),
		Database:  database,
		Updated:   res.Updated,
		Ships:     res.Rows,
		Warnings:  res.Warnings,
		Files:     make([]FileEntry, len(files)),
		Previews:  previews,
	}
	if m.Ships == nil {
		m.Ships = []merge.RowUpdate{}
	}
	if m.Warnings == nil {
		m.Warnings = []merge.Warning{}
	}
	for i, f := range files {
		m.Files[i] = FileEntry{
			File:   filepath.Base(f.Path),
			ShipID: f.ShipID,
			Points: f.Points,
		}
		if f.Err != nil {
			m.Files[i].Error = f.Err.Error()
		}
	}
	return m
}

// Write writes the manifest as indented JSON, creating the parent directory.
func Write(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
