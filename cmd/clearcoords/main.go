// clearcoords migrates ship_visuals_database.csv to the 14-column schema
// (empty scale_factor inserted after sprite_height) and resets every
// coordinate_points value to [].
//
// Usage:
//
//	go run ./cmd/clearcoords [--base DIR] [--csv FILE] [--config FILE]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ship-visuals-tools/internal/config"
	"ship-visuals-tools/internal/logging"
	"ship-visuals-tools/internal/migrate"
)

var (
	configFile string
	baseDir    string
	csvPath    string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "clearcoords",
	Short: "Clear coordinate_points and add the scale_factor column",
	Long: `Rewrites the ship visuals database in place:
  - legacy 13-column rows get an empty scale_factor at column 5
  - short rows are padded to 14 columns
  - every non-empty coordinate_points value becomes []

Comments, blank lines and the header are kept as they are.`,
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
	RunE: runClear,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "Path to a JSON or YAML config file")
	rootCmd.Flags().StringVar(&baseDir, "base", "", "Project directory containing data/ (default: auto-detect)")
	rootCmd.Flags().StringVar(&csvPath, "csv", "", "Database file (default: <base>/data/ship_visuals_database.csv)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Setup(configFile, config.Flags{BaseDir: baseDir, CSVPath: csvPath})
	if err != nil {
		return err
	}
	logger.Debug("database", zap.String("path", cfg.CSVPath))

	st, err := migrate.Run(cfg.CSVPath, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✓ Cleared %d ships' coordinates\n", st.Cleared)
	if st.Migrated > 0 {
		fmt.Fprintf(out, "✓ Added scale_factor column to %d rows\n", st.Migrated)
	}
	fmt.Fprintln(out, "✓ CSV updated with scale_factor column")
	return nil
}
