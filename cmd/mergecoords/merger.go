package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"ship-visuals-tools/internal/config"
	"ship-visuals-tools/internal/descriptor"
	"ship-visuals-tools/internal/merge"
	"ship-visuals-tools/internal/report"
	"ship-visuals-tools/internal/shipcsv"
	"ship-visuals-tools/internal/sprite"
	"ship-visuals-tools/internal/watch"
)

type merger struct {
	cfg        config.Config
	out        io.Writer
	log        *zap.Logger
	reportPath string
}

// once loads the descriptors and merges them into the database.
func (m *merger) once() error {
	set, files, err := descriptor.LoadDir(m.cfg.JSONDir, m.log)
	if err != nil {
		return err
	}

	if len(set) == 0 {
		fmt.Fprintln(m.out, "\nNo ship data to merge.")
		return nil
	}
	fmt.Fprintf(m.out, "\nMerging data for %d ship(s)...\n", len(set))

	var paths map[string]string
	if m.cfg.ProbeSprites || m.cfg.PreviewDir != "" {
		lines, err := shipcsv.ReadLines(m.cfg.CSVPath)
		if err != nil {
			return err
		}
		paths = sprite.SpritePaths(lines)
	}
	if m.cfg.ProbeSprites {
		n := sprite.ProbePNGSizes(set, paths, m.cfg.SpriteDir, m.log)
		m.log.Debug("png sizes probed from sprites", zap.Int("count", n))
	}

	res, err := merge.Run(m.cfg.CSVPath, set, m.log)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\n✓ Updated %d ships in %s\n", res.Updated, filepath.Base(m.cfg.CSVPath))
	if len(res.Warnings) > 0 {
		fmt.Fprintf(m.out, "⚠ %d coordinate warning(s)\n", len(res.Warnings))
	}

	var previews []sprite.Result
	if m.cfg.PreviewDir != "" {
		previews = m.previews(set, paths, res)
	}

	if m.reportPath != "" {
		if err := report.Write(m.reportPath, report.Build(m.cfg.CSVPath, res, files, previews)); err != nil {
			m.log.Warn("report write failed", zap.String("path", m.reportPath), zap.Error(err))
		} else {
			fmt.Fprintf(m.out, "Report: %s\n", m.reportPath)
		}
	}
	return nil
}

func (m *merger) previews(set descriptor.Set, paths map[string]string, res merge.Result) []sprite.Result {
	var jobs []sprite.Job
	for _, row := range res.Rows {
		rel, ok := paths[row.ShipID]
		if !ok {
			continue
		}
		jobs = append(jobs, sprite.Job{
			ShipID:     row.ShipID,
			SpritePath: sprite.ResolvePath(m.cfg.SpriteDir, rel),
			Points:     set[row.ShipID].Points,
		})
	}

	results := sprite.WritePreviews(sprite.PreviewConfig{
		OutputDir: m.cfg.PreviewDir,
		Size:      m.cfg.PreviewSize,
		Workers:   m.cfg.Workers,
	}, jobs, m.log)

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
			continue
		}
		m.log.Warn("preview failed", zap.String("ship", r.ShipID), zap.String("error", r.Error))
	}
	fmt.Fprintf(m.out, "Previews: %d/%d in %s\n", ok, len(jobs), m.cfg.PreviewDir)
	return results
}

// watch merges once, then again after every descriptor change until ctx ends.
func (m *merger) watch(ctx context.Context) error {
	if err := m.once(); err != nil {
		return err
	}

	w, err := watch.New(m.cfg.JSONDir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", m.cfg.JSONDir, err)
	}
	defer w.Close()

	fmt.Fprintf(m.out, "\nWatching %s (Ctrl+C to stop)\n", m.cfg.JSONDir)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(m.out, "\nDone!")
			return nil
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			m.log.Info("descriptor changed", zap.String("file", filepath.Base(name)))
			if err := m.once(); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.log.Warn("watch error", zap.Error(err))
		}
	}
}
