package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"ship-visuals-tools/internal/config"
	"ship-visuals-tools/internal/report"
)

const header = "ship_ID,sprite_path,sprite_exists,sprite_width,sprite_height,scale_factor,a,b,c,d,e,f,g,coordinate_points\n"

// setupProject lays out <base>/data/ship_visuals_database.csv,
// <base>/tools/ship_JSONS and a 100x100 sprite for A1.
func setupProject(t *testing.T, rows string) string {
	t.Helper()
	base := t.TempDir()
	for _, dir := range []string{"data", filepath.Join("tools", "ship_JSONS"), "ships"} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, dir), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(base, "data", "ship_visuals_database.csv"), []byte(header+rows), 0644))

	f, err := os.Create(filepath.Join(base, "ships", "a1.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 100, 100))))
	require.NoError(t, f.Close())
	return base
}

func writeDescriptor(t *testing.T, base, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(base, "tools", "ship_JSONS", name), []byte(content), 0644))
}

func readDB(t *testing.T, base string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(base, "data", "ship_visuals_database.csv"))
	require.NoError(t, err)
	return string(raw)
}

func resetFlags() {
	configFile, baseDir, csvPath, jsonDir, previewDir, reportPath = "", "", "", "", "", ""
	previewSize, workers = 0, 0
	probeSprites, watchMode, verbose = false, false, false
}

func TestRunMerge(t *testing.T) {
	logger = zap.NewNop()
	defer resetFlags()

	base := setupProject(t,
		"A1,ships/a1.png,true,10,10,,a,b,c,d,e,f,g,[]\n"+
			"B2,ships/b2.png,false,8,8,,a,b,c,d,e,f,g,[]\n")
	writeDescriptor(t, base, "a1.json", `{"ship_id":"A1","points":[{"x":5,"y":5,"label":"p"},{"x":120,"y":5,"label":"far"}],"sprite_size":{"width":64,"height":64},"scale_factor":0.5}`)
	writeDescriptor(t, base, "broken.json", `{"ship_id":`)

	baseDir = base
	probeSprites = true
	previewDir = filepath.Join(base, "previews")
	previewSize = 50
	reportPath = filepath.Join(base, "merge_report.json")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	require.NoError(t, runMerge(rootCmd, nil))

	assert.Contains(t, out.String(), "Merging data for 1 ship(s)...")
	assert.Contains(t, out.String(), "✓ Updated 1 ships in ship_visuals_database.csv")
	assert.Contains(t, out.String(), "⚠ 1 coordinate warning(s)")
	assert.Contains(t, out.String(), "Previews: 1/1")
	assert.Contains(t, out.String(), "Done!")

	db := readDB(t, base)
	assert.Contains(t, db, `A1,ships/a1.png,true,64,64,0.5000,a,b,c,d,e,f,g,[{"x":5,"y":5,"label":"p"},{"x":120,"y":5,"label":"far"}]`+"\n")
	assert.Contains(t, db, "B2,ships/b2.png,false,8,8,,a,b,c,d,e,f,g,[]\n")

	_, err := os.Stat(filepath.Join(base, "previews", "A1.webp"))
	assert.NoError(t, err)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var m report.Manifest
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, 1, m.Updated)
	assert.Len(t, m.Warnings, 1)
	assert.Len(t, m.Files, 2)
}

func TestRunMergeNoDescriptors(t *testing.T) {
	logger = zap.NewNop()
	defer resetFlags()

	rows := "A1,ships/a1.png,true,10,10,,a,b,c,d,e,f,g,[]"
	base := setupProject(t, rows)
	require.NoError(t, os.RemoveAll(filepath.Join(base, "tools", "ship_JSONS")))
	baseDir = base

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	require.NoError(t, runMerge(rootCmd, nil))
	assert.Contains(t, out.String(), "No ship data to merge.")
	assert.Equal(t, header+rows, readDB(t, base))

	info, err := os.Stat(filepath.Join(base, "tools", "ship_JSONS"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunMergeMissingDatabase(t *testing.T) {
	logger = zap.NewNop()
	defer resetFlags()

	base := setupProject(t, "")
	writeDescriptor(t, base, "a1.json", `{"ship_id":"A1","points":[]}`)
	require.NoError(t, os.Remove(filepath.Join(base, "data", "ship_visuals_database.csv")))
	baseDir = base
	csvPath = filepath.Join(base, "data", "ship_visuals_database.csv")

	rootCmd.SetOut(&bytes.Buffer{})
	defer rootCmd.SetOut(nil)

	assert.Error(t, runMerge(rootCmd, nil))
}

func TestRunMergeRejectsReportInDescriptorDir(t *testing.T) {
	logger = zap.NewNop()
	defer resetFlags()

	rows := "A1,ships/a1.png,true,10,10,,a,b,c,d,e,f,g,[]\n"
	base := setupProject(t, rows)
	writeDescriptor(t, base, "a1.json", `{"ship_id":"A1","points":[]}`)
	baseDir = base
	reportPath = filepath.Join(base, "tools", "ship_JSONS", "report.json")

	rootCmd.SetOut(&bytes.Buffer{})
	defer rootCmd.SetOut(nil)

	err := runMerge(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descriptor directory")
	assert.Equal(t, header+rows, readDB(t, base))
	_, statErr := os.Stat(reportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheckReportPath(t *testing.T) {
	jsonDir := filepath.Join(t.TempDir(), "tools", "ship_JSONS")
	cfg := config.Config{JSONDir: jsonDir}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "empty", path: ""},
		{name: "outside", path: filepath.Join(filepath.Dir(jsonDir), "report.json")},
		{name: "other extension", path: filepath.Join(jsonDir, "report.txt")},
		{name: "subdirectory", path: filepath.Join(jsonDir, "out", "report.json")},
		{name: "descriptor dir", path: filepath.Join(jsonDir, "report.json"), wantErr: true},
		{name: "upper case extension", path: filepath.Join(jsonDir, "REPORT.JSON"), wantErr: true},
		{name: "unclean path", path: filepath.Join(jsonDir, "..", "ship_JSONS", "r.json"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkReportPath(cfg, tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.path != "" {
				assert.True(t, filepath.IsAbs(got))
			}
		})
	}
}

func TestMergerWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	base := setupProject(t, "A1,ships/a1.png,true,10,10,,a,b,c,d,e,f,g,[]\n")
	cfg := config.Config{}
	cfg.Resolve(config.Flags{BaseDir: base})

	var out syncBuffer
	m := &merger{cfg: cfg, out: &out, log: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.watch(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching")
	}, 5*time.Second, 10*time.Millisecond)

	// Rename into place so the watcher never sees a half-written file.
	writeDescriptor(t, base, "a1.json.tmp", `{"ship_id":"A1","points":[{"x":1,"y":2,"label":"gun"}]}`)
	dir := filepath.Join(base, "tools", "ship_JSONS")
	require.NoError(t, os.Rename(filepath.Join(dir, "a1.json.tmp"), filepath.Join(dir, "a1.json")))

	require.Eventually(t, func() bool {
		return strings.Contains(readDB(t, base), `[{"x":1,"y":2,"label":"gun"}]`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
