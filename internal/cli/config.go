package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/pkoenig/boxtree/pkg/pipeline"
)

// Config holds user preferences read from the optional config file at
// ~/.config/boxtree/config.toml. Every field maps to a flag; flags set on
// the command line always win.
type Config struct {
	Engine            string  `toml:"engine"`
	Columns           int     `toml:"columns"`
	Padding           float64 `toml:"padding"`
	Spacing           float64 `toml:"spacing"`
	MinNodeWidth      float64 `toml:"min_node_width"`
	MinNodeHeight     float64 `toml:"min_node_height"`
	TargetAspectRatio float64 `toml:"target_aspect_ratio"`
	LeafNodeWidth     float64 `toml:"leaf_node_width"`
	FontSize          float64 `toml:"font_size"`
	FontFamily        string  `toml:"font_family"`
	Oracle            string  `toml:"oracle"`
	Scale             float64 `toml:"scale"`
	NoLabels          bool    `toml:"no_labels"`
	Addr              string  `toml:"addr"`

	// CacheURL selects a shared cache backend (redis:// or mongodb://).
	// Empty means the local file cache.
	CacheURL string `toml:"cache_url"`
}

// configPath returns the config file location, following XDG conventions.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields a zero Config and no error.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyConfig copies config values into opts for every flag the user did
// not set explicitly. Pipeline defaults fill whatever remains zero.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *pipeline.Options) {
	set := func(flag string) bool {
		f := cmd.Flags().Lookup(flag)
		return f != nil && f.Changed
	}

	cfg := c.Config
	if cfg.Engine != "" && !set("engine") {
		opts.LayoutType = cfg.Engine
	}
	if cfg.Columns != 0 && !set("columns") {
		opts.Columns = cfg.Columns
	}
	if cfg.Padding != 0 && !set("padding") {
		opts.Padding = cfg.Padding
	}
	if cfg.Spacing != 0 && !set("spacing") {
		opts.Spacing = cfg.Spacing
	}
	if cfg.MinNodeWidth != 0 && !set("min-width") {
		opts.MinNodeWidth = cfg.MinNodeWidth
	}
	if cfg.MinNodeHeight != 0 && !set("min-height") {
		opts.MinNodeHeight = cfg.MinNodeHeight
	}
	if cfg.TargetAspectRatio != 0 && !set("aspect-ratio") {
		opts.TargetAspectRatio = cfg.TargetAspectRatio
	}
	if cfg.LeafNodeWidth != 0 && !set("leaf-width") {
		opts.LeafNodeWidth = cfg.LeafNodeWidth
	}
	if cfg.FontSize != 0 && !set("font-size") {
		opts.FontSize = cfg.FontSize
	}
	if cfg.FontFamily != "" && !set("font-family") {
		opts.FontFamily = cfg.FontFamily
	}
	if cfg.Oracle != "" && !set("oracle") {
		opts.Oracle = cfg.Oracle
	}
	if cfg.Scale != 0 && !set("scale") {
		opts.Scale = cfg.Scale
	}
	if cfg.NoLabels && !set("no-labels") {
		opts.NoLabels = true
	}
}
