// Package config loads and saves the persistent paintkit settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/ha1tch/paintkit/pkg/canvas"
	"github.com/ha1tch/paintkit/pkg/floodfill"
	"github.com/ha1tch/paintkit/pkg/history"
	"github.com/ha1tch/paintkit/pkg/imageio"
	"github.com/ha1tch/paintkit/pkg/palette"
	"github.com/ha1tch/paintkit/pkg/raster"
	"github.com/ha1tch/paintkit/pkg/tools"
)

// FileName is the config file name in the home directory.
const FileName = ".paintkit.toml"

// Config holds persistent settings
type Config struct {
	Width              int      `toml:"width"`
	Height             int      `toml:"height"`
	Background         string   `toml:"background"`
	Color              string   `toml:"color"`
	BrushSize          int      `toml:"brush_size"`
	Tool               string   `toml:"tool"`
	Tolerance          int      `toml:"tolerance"`
	Expansion          int      `toml:"expansion"`
	HistoryLimit       int      `toml:"history_limit"`
	SnapshotEncoding   string   `toml:"snapshot_encoding"`
	PickReturnsToBrush bool     `toml:"pick_returns_to_brush"`
	Palette            []string `toml:"palette"`
	LastDir            string   `toml:"last_dir"` // last save directory
	LogFile            string   `toml:"log_file"` // debug log destination, empty for none
	ExportScale        int      `toml:"export_scale"`
}

// Default returns the default configuration
func Default() Config {
	opts := canvas.DefaultOptions()
	cwd, _ := os.Getwd()
	return Config{
		Width:              opts.Width,
		Height:             opts.Height,
		Background:         opts.Background.Hex(),
		Color:              opts.Color.Hex(),
		BrushSize:          opts.BrushSize,
		Tool:               opts.Tool.String(),
		Tolerance:          opts.Fill.Tolerance,
		Expansion:          opts.Fill.Expansion,
		HistoryLimit:       opts.HistoryLimit,
		SnapshotEncoding:   opts.Encoding.String(),
		PickReturnsToBrush: opts.PickReturnsToBrush,
		Palette:            palette.Default().Hex(),
		LastDir:            cwd,
		ExportScale:        1,
	}
}

// Path returns the path to the config file
func Path() string {
	home, err := homedir.Dir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads a config file. A missing file yields the defaults; keys absent
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	cfg.Palette = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Palette == nil {
		cfg.Palette = palette.Default().Hex()
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg Config) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString("# paintkit configuration\n")
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate checks every field and names the first bad one.
func (c Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("width/height: canvas must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	if _, err := raster.ParseHex(c.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if _, err := raster.ParseHex(c.Color); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if c.BrushSize < tools.MinBrushSize || c.BrushSize > tools.MaxBrushSize {
		return fmt.Errorf("brush_size: %d not in [%d, %d]", c.BrushSize, tools.MinBrushSize, tools.MaxBrushSize)
	}
	if _, err := tools.ParseKind(c.Tool); err != nil {
		return fmt.Errorf("tool: %w", err)
	}
	if c.Tolerance < 0 || c.Tolerance > floodfill.MaxTolerance {
		return fmt.Errorf("tolerance: %d not in [0, %d]", c.Tolerance, floodfill.MaxTolerance)
	}
	if c.Expansion < 0 || c.Expansion > floodfill.MaxExpansion {
		return fmt.Errorf("expansion: %d not in [0, %d]", c.Expansion, floodfill.MaxExpansion)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit: must be positive, got %d", c.HistoryLimit)
	}
	if _, err := history.ParseEncoding(c.SnapshotEncoding); err != nil {
		return fmt.Errorf("snapshot_encoding: %w", err)
	}
	if _, err := palette.Parse(c.Palette); err != nil {
		return fmt.Errorf("palette: %w", err)
	}
	if c.ExportScale < 1 || c.ExportScale > imageio.MaxScale {
		return fmt.Errorf("export_scale: %d not in [1, %d]", c.ExportScale, imageio.MaxScale)
	}
	return nil
}

// SessionOptions converts the settings to canvas options. The config must
// be valid.
func (c Config) SessionOptions() canvas.Options {
	opts := canvas.DefaultOptions()
	opts.Width, opts.Height = c.Width, c.Height
	opts.Background, _ = raster.ParseHex(c.Background)
	opts.Color, _ = raster.ParseHex(c.Color)
	opts.BrushSize = c.BrushSize
	opts.Tool, _ = tools.ParseKind(c.Tool)
	opts.Fill.Tolerance = c.Tolerance
	opts.Fill.Expansion = c.Expansion
	opts.Fill.Policy = floodfill.Direct
	if c.Expansion > 0 {
		opts.Fill.Policy = floodfill.Expand
	}
	opts.HistoryLimit = c.HistoryLimit
	opts.Encoding, _ = history.ParseEncoding(c.SnapshotEncoding)
	opts.PickReturnsToBrush = c.PickReturnsToBrush
	return opts
}

// Swatches returns the configured palette, falling back to the default.
func (c Config) Swatches() palette.Palette {
	p, err := palette.Parse(c.Palette)
	if err != nil || len(p) == 0 {
		return palette.Default()
	}
	return p
}

// SaveOptions returns the export settings.
func (c Config) SaveOptions() imageio.SaveOptions {
	return imageio.SaveOptions{Scale: c.ExportScale}
}
