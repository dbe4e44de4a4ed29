// Package config provides configuration types, defaults and validation for
// tilepan.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/tilepan/internal/autoscroll"
	"github.com/zjrosen/tilepan/internal/content"
	"github.com/zjrosen/tilepan/internal/grid"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/tracing"
)

// Config holds all configuration options for tilepan.
type Config struct {
	Grid       GridConfig       `mapstructure:"grid" yaml:"grid"`
	Viewport   ViewportConfig   `mapstructure:"viewport" yaml:"viewport"`
	AutoScroll AutoScrollConfig `mapstructure:"auto_scroll" yaml:"auto_scroll"`
	Drag       DragConfig       `mapstructure:"drag" yaml:"drag"`
	Content    ContentConfig    `mapstructure:"content" yaml:"content"`
	UI         UIConfig         `mapstructure:"ui" yaml:"ui"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Tracing    tracing.Config   `mapstructure:"tracing" yaml:"tracing"`
}

// GridConfig sizes the virtual grid in terminal cells.
type GridConfig struct {
	CellWidth   int  `mapstructure:"cell_width" yaml:"cell_width"`
	CellHeight  int  `mapstructure:"cell_height" yaml:"cell_height"`
	Gap         int  `mapstructure:"gap" yaml:"gap"`
	VirtualSize int  `mapstructure:"virtual_size" yaml:"virtual_size"`
	Buffer      int  `mapstructure:"buffer" yaml:"buffer"`
	Stagger     bool `mapstructure:"stagger" yaml:"stagger"`
}

// Geometry converts to the engine's grid config.
func (g GridConfig) Geometry() grid.Config {
	return grid.Config{
		CellWidth:   g.CellWidth,
		CellHeight:  g.CellHeight,
		Gap:         g.Gap,
		VirtualSize: g.VirtualSize,
		Buffer:      g.Buffer,
		Stagger:     g.Stagger,
	}
}

// ViewportConfig tunes the wraparound reset.
type ViewportConfig struct {
	ResetThreshold float64 `mapstructure:"reset_threshold" yaml:"reset_threshold"`
}

// AutoScrollConfig tunes idle auto-scroll.
type AutoScrollConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	IdleDelay  time.Duration `mapstructure:"idle_delay" yaml:"idle_delay"`
	Interval   time.Duration `mapstructure:"interval" yaml:"interval"`
	DeltaX     float64       `mapstructure:"delta_x" yaml:"delta_x"`
	DeltaY     float64       `mapstructure:"delta_y" yaml:"delta_y"`
	ArmOnStart bool          `mapstructure:"arm_on_start" yaml:"arm_on_start"` // Start counting down without waiting for input
}

// Controller converts to the auto-scroll controller config.
func (a AutoScrollConfig) Controller() autoscroll.Config {
	return autoscroll.Config{
		IdleDelay: a.IdleDelay,
		Interval:  a.Interval,
		Delta:     grid.Vec{X: a.DeltaX, Y: a.DeltaY},
		Enabled:   a.Enabled,
	}
}

// DragConfig tunes pointer dragging.
type DragConfig struct {
	DeadZone float64 `mapstructure:"dead_zone" yaml:"dead_zone"`
}

// ContentConfig selects the content pool.
type ContentConfig struct {
	Source   string `mapstructure:"source" yaml:"source"` // builtin, file or catalog
	PoolSize int    `mapstructure:"pool_size" yaml:"pool_size"`
	File     string `mapstructure:"file" yaml:"file,omitempty"`
	Catalog  string `mapstructure:"catalog" yaml:"catalog,omitempty"`
	Watch    bool   `mapstructure:"watch" yaml:"watch"` // Reload when the file or catalog changes
}

// LoadConfig converts to the content loader config.
func (c ContentConfig) LoadConfig() content.LoadConfig {
	return content.LoadConfig{
		Source:   content.Source(c.Source),
		PoolSize: c.PoolSize,
		File:     c.File,
		Catalog:  c.Catalog,
	}
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar  bool   `mapstructure:"show_status_bar" yaml:"show_status_bar"`
	ShowScrollbars bool   `mapstructure:"show_scrollbars" yaml:"show_scrollbars"`
	ShowKeys       bool   `mapstructure:"show_keys" yaml:"show_keys"` // Draw tile keys for debugging
	KeyStep        int    `mapstructure:"key_step" yaml:"key_step"`
	MarkdownStyle  string `mapstructure:"markdown_style" yaml:"markdown_style"` // "dark" (default) or "light"
}

// CacheConfig tunes the rendered tile cache.
type CacheConfig struct {
	TileTTL time.Duration `mapstructure:"tile_ttl" yaml:"tile_ttl"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()
	return Config{
		Grid: GridConfig{
			CellWidth:   26,
			CellHeight:  7,
			Gap:         2,
			VirtualSize: 200,
			Buffer:      2,
			Stagger:     true,
		},
		Viewport: ViewportConfig{ResetThreshold: 0.1},
		AutoScroll: AutoScrollConfig{
			Enabled:   true,
			IdleDelay: time.Second,
			Interval:  16 * time.Millisecond,
			DeltaX:    0.12,
			DeltaY:    0.06,
		},
		Drag: DragConfig{DeadZone: 1},
		Content: ContentConfig{
			Source:   string(content.SourceBuiltin),
			PoolSize: content.DefaultPoolSize,
			Watch:    true,
		},
		UI: UIConfig{
			ShowStatusBar:  true,
			ShowScrollbars: true,
			KeyStep:        4,
			MarkdownStyle:  "dark",
		},
		Cache:   CacheConfig{TileTTL: 10 * time.Minute},
		Tracing: tr,
	}
}

// SetDefaults registers every default on v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("grid.cell_width", d.Grid.CellWidth)
	v.SetDefault("grid.cell_height", d.Grid.CellHeight)
	v.SetDefault("grid.gap", d.Grid.Gap)
	v.SetDefault("grid.virtual_size", d.Grid.VirtualSize)
	v.SetDefault("grid.buffer", d.Grid.Buffer)
	v.SetDefault("grid.stagger", d.Grid.Stagger)
	v.SetDefault("viewport.reset_threshold", d.Viewport.ResetThreshold)
	v.SetDefault("auto_scroll.enabled", d.AutoScroll.Enabled)
	v.SetDefault("auto_scroll.idle_delay", d.AutoScroll.IdleDelay)
	v.SetDefault("auto_scroll.interval", d.AutoScroll.Interval)
	v.SetDefault("auto_scroll.delta_x", d.AutoScroll.DeltaX)
	v.SetDefault("auto_scroll.delta_y", d.AutoScroll.DeltaY)
	v.SetDefault("auto_scroll.arm_on_start", d.AutoScroll.ArmOnStart)
	v.SetDefault("drag.dead_zone", d.Drag.DeadZone)
	v.SetDefault("content.source", d.Content.Source)
	v.SetDefault("content.pool_size", d.Content.PoolSize)
	v.SetDefault("content.file", d.Content.File)
	v.SetDefault("content.catalog", d.Content.Catalog)
	v.SetDefault("content.watch", d.Content.Watch)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.show_scrollbars", d.UI.ShowScrollbars)
	v.SetDefault("ui.show_keys", d.UI.ShowKeys)
	v.SetDefault("ui.key_step", d.UI.KeyStep)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("cache.tile_ttl", d.Cache.TileTTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Unmarshal decodes v into a Config and validates it.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultTracesFilePath returns ~/.config/tilepan/traces/traces.jsonl.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tilepan", "traces", "traces.jsonl")
	}
	return filepath.Join(home, ".config", "tilepan", "traces", "traces.jsonl")
}

// Validate checks every section and joins all problems found.
func Validate(cfg Config) error {
	return errors.Join(
		ValidateGrid(cfg.Grid),
		ValidateViewport(cfg.Viewport),
		ValidateAutoScroll(cfg.AutoScroll),
		ValidateDrag(cfg.Drag),
		ValidateContent(cfg.Content),
		ValidateUI(cfg.UI),
		ValidateCache(cfg.Cache),
		ValidateTracing(cfg.Tracing),
	)
}

// ValidateGrid checks grid dimensions.
func ValidateGrid(g GridConfig) error {
	if err := g.Geometry().Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	return nil
}

// ValidateViewport checks the reset threshold lies in (0, 0.5).
func ValidateViewport(v ViewportConfig) error {
	if v.ResetThreshold <= 0 || v.ResetThreshold >= 0.5 {
		return fmt.Errorf("viewport.reset_threshold must be between 0 and 0.5 (exclusive), got %v", v.ResetThreshold)
	}
	return nil
}

// ValidateAutoScroll checks timings are positive.
func ValidateAutoScroll(a AutoScrollConfig) error {
	if a.IdleDelay <= 0 {
		return fmt.Errorf("auto_scroll.idle_delay must be positive, got %v", a.IdleDelay)
	}
	if a.Interval <= 0 {
		return fmt.Errorf("auto_scroll.interval must be positive, got %v", a.Interval)
	}
	return nil
}

// ValidateDrag checks the dead zone.
func ValidateDrag(d DragConfig) error {
	if d.DeadZone < 0 {
		return fmt.Errorf("drag.dead_zone must not be negative, got %v", d.DeadZone)
	}
	return nil
}

// ValidateContent checks the source and its required path.
func ValidateContent(c ContentConfig) error {
	switch content.Source(c.Source) {
	case content.SourceBuiltin:
		if c.PoolSize < 1 {
			return fmt.Errorf("content.pool_size must be at least 1, got %d", c.PoolSize)
		}
	case content.SourceFile:
		if c.File == "" {
			return fmt.Errorf("content.file is required when content.source is \"file\"")
		}
	case content.SourceCatalog:
		if c.Catalog == "" {
			return fmt.Errorf("content.catalog is required when content.source is \"catalog\"")
		}
	default:
		return fmt.Errorf("content.source must be \"builtin\", \"file\" or \"catalog\", got %q", c.Source)
	}
	return nil
}

// ValidateUI checks UI options.
func ValidateUI(u UIConfig) error {
	if u.KeyStep < 1 {
		return fmt.Errorf("ui.key_step must be at least 1, got %d", u.KeyStep)
	}
	switch u.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", u.MarkdownStyle)
	}
	return nil
}

// ValidateCache checks cache options.
func ValidateCache(c CacheConfig) error {
	if c.TileTTL < 0 {
		return fmt.Errorf("cache.tile_ttl must not be negative, got %v", c.TileTTL)
	}
	return nil
}

// ValidateTracing checks tracing configuration. Empty values use defaults.
func ValidateTracing(tr tracing.Config) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}
	switch tr.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
	}
	if tr.Enabled {
		if tr.Exporter == "file" && tr.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tr.Exporter == "otlp" && tr.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as YAML with comments.
func DefaultConfigTemplate() string {
	return `# Tilepan Configuration

# Virtual grid, measured in terminal cells
grid:
  cell_width: 26      # Tile width
  cell_height: 7      # Tile height
  gap: 2              # Space between tiles
  virtual_size: 200   # Backing grid is virtual_size x virtual_size tiles
  buffer: 2           # Extra rows/columns rendered past each edge
  stagger: true       # Shift odd rows by half a tile (brick layout)

viewport:
  reset_threshold: 0.1  # Re-center when within this fraction of an edge

# Start panning on its own after a period without input
auto_scroll:
  enabled: true
  idle_delay: 1s
  interval: 16ms
  delta_x: 0.12       # Cells per tick
  delta_y: 0.06
  arm_on_start: false # Count down from launch instead of the first key press

drag:
  dead_zone: 1        # Cells a press may travel and still count as a click

# Where tile content comes from
content:
  source: builtin     # builtin, file or catalog
  pool_size: 40
  # file: tiles.yaml
  # catalog: tiles.db
  watch: true         # Reload when the file or catalog changes

ui:
  show_status_bar: true
  show_scrollbars: true
  show_keys: false    # Draw tile keys (debug)
  key_step: 4         # Cells moved per arrow key
  # markdown_style: dark  # Help rendering style: "dark" (default) or "light"

cache:
  tile_ttl: 10m

# Tracing for drag sessions and auto-scroll runs
# tracing:
#   enabled: true
#   exporter: file    # none, file, stdout or otlp
#   file_path: ~/.config/tilepan/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at configPath from the template,
// creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
