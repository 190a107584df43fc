package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatabaseFile is the ship visuals CSV, relative to the base dir.
var DatabaseFile = filepath.Join("data", "ship_visuals_database.csv")

// DescriptorDir holds the per-ship JSON files, relative to the base dir.
var DescriptorDir = filepath.Join("tools", "ship_JSONS")

// Config holds all configurable paths and merge settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir" yaml:"base_dir"`
	CSVPath    string `json:"csv_path" yaml:"csv_path"`
	JSONDir    string `json:"json_dir" yaml:"json_dir"`
	SpriteDir  string `json:"sprite_dir" yaml:"sprite_dir"`
	PreviewDir string `json:"preview_dir" yaml:"preview_dir"`

	// Merge settings
	ProbeSprites bool `json:"probe_sprites" yaml:"probe_sprites"`
	PreviewSize  int  `json:"preview_size" yaml:"preview_size"`
	Workers      int  `json:"workers" yaml:"workers"`
}

// Load reads a JSON or YAML config file, picked by extension.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	// Flag paths are relative to the working directory, not the base dir
	if flags.CSVPath != "" {
		c.CSVPath = absPath(flags.CSVPath)
	}
	if flags.JSONDir != "" {
		c.JSONDir = absPath(flags.JSONDir)
	}
	if flags.PreviewDir != "" {
		c.PreviewDir = absPath(flags.PreviewDir)
	}
	if flags.ProbeSprites {
		c.ProbeSprites = true
	}
	if flags.PreviewSize > 0 {
		c.PreviewSize = flags.PreviewSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// An explicit CSV outside any detected tree: its data/ parent is the base
	if c.BaseDir == "" && c.CSVPath != "" {
		c.CSVPath = absPath(c.CSVPath)
		c.BaseDir = filepath.Dir(filepath.Dir(c.CSVPath))
	}

	// Relative paths resolve against the base dir
	if c.BaseDir != "" {
		c.CSVPath = resolvePath(c.BaseDir, c.CSVPath, DatabaseFile)
		c.JSONDir = resolvePath(c.BaseDir, c.JSONDir, DescriptorDir)
		c.SpriteDir = resolvePath(c.BaseDir, c.SpriteDir, ".")
		if c.PreviewDir != "" && !filepath.IsAbs(c.PreviewDir) {
			c.PreviewDir = filepath.Join(c.BaseDir, c.PreviewDir)
		}
	}

	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir      string
	CSVPath      string
	JSONDir      string
	PreviewDir   string
	ProbeSprites bool
	PreviewSize  int
	Workers      int
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func resolvePath(base, p, def string) string {
	switch {
	case p == "":
		return filepath.Join(base, def)
	case filepath.IsAbs(p):
		return p
	default:
		return filepath.Join(base, p)
	}
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if hasDatabase(base) {
				return base
			}
		}
	}

	// Try current working directory
	cwd, _ := os.Getwd()
	if hasDatabase(cwd) {
		return cwd
	}

	// Try parent of cwd (if we're in tools/)
	parent := filepath.Dir(cwd)
	if hasDatabase(parent) {
		return parent
	}

	return ""
}

func hasDatabase(base string) bool {
	_, err := os.Stat(filepath.Join(base, DatabaseFile))
	return err == nil
}

// Setup loads the optional config file and resolves it against flags.
func Setup(path string, flags Flags) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return Config{}, err
		}
	}
	cfg.Resolve(flags)
	if cfg.CSVPath == "" {
		return cfg, fmt.Errorf("config: cannot find %s; use --base, --csv or --config", DatabaseFile)
	}
	return cfg, nil
}
