// mergecoords merges per-ship coordinate JSON files (tools/ship_JSONS/*.json)
// into ship_visuals_database.csv: sprite size, scale factor and
// coordinate_points.
//
// Usage:
//
//	go run ./cmd/mergecoords [--base DIR] [--json-dir DIR] [--watch]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ship-visuals-tools/internal/config"
	"ship-visuals-tools/internal/logging"
)

var (
	configFile   string
	baseDir      string
	csvPath      string
	jsonDir      string
	previewDir   string
	previewSize  int
	workers      int
	probeSprites bool
	reportPath   string
	watchMode    bool
	verbose      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mergecoords",
	Short: "Merge ship coordinate JSONs into the ship visuals database",
	Long: `Loads every *.json descriptor from the ship_JSONS directory and updates the
matching database rows:
  - sprite_width / sprite_height from sprite_size
  - scale_factor (4 decimals) when non-zero
  - coordinate_points from points

Points outside png_size or with negative coordinates are reported as warnings
and still written. Rows without a descriptor are left as they are.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(cmd.OutOrStdout(), verbose)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runMerge,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configFile, "config", "", "Path to a JSON or YAML config file")
	f.StringVar(&baseDir, "base", "", "Project directory containing data/ and tools/ (default: auto-detect)")
	f.StringVar(&csvPath, "csv", "", "Database file (default: <base>/data/ship_visuals_database.csv)")
	f.StringVar(&jsonDir, "json-dir", "", "Descriptor directory (default: <base>/tools/ship_JSONS)")
	f.BoolVar(&probeSprites, "probe-sprites", false, "Read png_size from the sprite file when a descriptor has none")
	f.StringVar(&previewDir, "preview-dir", "", "Write a WebP coordinate preview per updated ship into this directory")
	f.IntVar(&previewSize, "preview-size", 0, "Longest side of preview images (default: 256)")
	f.IntVar(&workers, "workers", 0, "Preview worker goroutines (default: NumCPU)")
	f.StringVar(&reportPath, "report", "", "Write a JSON merge report to this file")
	f.BoolVarP(&watchMode, "watch", "w", false, "Keep running and merge again when descriptor files change")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := config.Setup(configFile, config.Flags{
		BaseDir:      baseDir,
		CSVPath:      csvPath,
		JSONDir:      jsonDir,
		PreviewDir:   previewDir,
		ProbeSprites: probeSprites,
		PreviewSize:  previewSize,
		Workers:      workers,
	})
	if err != nil {
		return err
	}
	reportFile, err := checkReportPath(cfg, reportPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out, "Ship Coordinate Merger")
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out)
	logger.Debug("paths",
		zap.String("csv", cfg.CSVPath),
		zap.String("json_dir", cfg.JSONDir),
		zap.String("sprite_dir", cfg.SpriteDir))

	m := &merger{cfg: cfg, out: out, log: logger, reportPath: reportFile}

	if !watchMode {
		if err := m.once(); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nDone!")
		return nil
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.watch(ctx)
}

// checkReportPath resolves the --report path against the working directory.
// A *.json report directly inside the descriptor dir would be loaded as a
// descriptor, and in watch mode every write would trigger another merge.
func checkReportPath(cfg config.Config, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("report path %s: %w", path, err)
	}
	jsonDir, err := filepath.Abs(cfg.JSONDir)
	if err != nil {
		return "", fmt.Errorf("json dir %s: %w", cfg.JSONDir, err)
	}
	if filepath.Dir(abs) == jsonDir && strings.EqualFold(filepath.Ext(abs), ".json") {
		return "", fmt.Errorf("report %s must not be a .json file in the descriptor directory %s", abs, jsonDir)
	}
	return abs, nil
}

// contextOrBackground keeps tests able to call runMerge without Execute.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
