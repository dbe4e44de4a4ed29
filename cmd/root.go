package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zjrosen/tilepan/internal/app"
	"github.com/zjrosen/tilepan/internal/config"
	"github.com/zjrosen/tilepan/internal/content"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config directory.
const localConfigPath = ".tilepan/config.yaml"

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "tilepan",
	Short: "An endless pannable tile grid for the terminal",
	Long: `An endless pannable tile grid for the terminal.

Drag with the mouse, scroll the wheel or use the arrow keys to pan. The grid
wraps around silently, so panning never reaches an edge. Left alone, it starts
drifting on its own.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/tilepan/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false,
		"enable debug logging and the log overlay (ctrl+x)")
	rootCmd.PersistentFlags().String("log-file", "tilepan.log",
		"debug log path")
	rootCmd.Flags().String("catalog", "",
		"load tile content from a SQLite catalog")
	rootCmd.Flags().Bool("no-auto-scroll", false,
		"disable idle auto-scroll")
	rootCmd.Flags().Bool("no-stagger", false,
		"align every row instead of the brick layout")
}

func initConfig() {
	cfg, cfgErr = loadConfig(viper.GetViper(), cfgFile)
}

// loadConfig resolves the config file and unmarshals it over the defaults.
// Lookup order:
//  1. explicit path (--config)
//  2. .tilepan/config.yaml (current directory)
//  3. ~/.config/tilepan/config.yaml (user config)
//
// A missing file in the lookup locations is not an error.
func loadConfig(v *viper.Viper, explicit string) (config.Config, error) {
	config.SetDefaults(v)

	switch {
	case explicit != "":
		v.SetConfigFile(explicit)
	case fileExists(localConfigPath):
		v.SetConfigFile(localConfigPath)
	default:
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "tilepan"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file, using defaults")
	} else {
		log.Debug(log.CatConfig, "Loaded config", "path", v.ConfigFileUsed())
	}

	return config.Unmarshal(v)
}

// applyFlags layers the run flags over the loaded config.
func applyFlags(flags *pflag.FlagSet, c *config.Config) {
	if path, _ := flags.GetString("catalog"); path != "" {
		c.Content.Source = string(content.SourceCatalog)
		c.Content.Catalog = path
	}
	if off, _ := flags.GetBool("no-auto-scroll"); off {
		c.AutoScroll.Enabled = false
	}
	if off, _ := flags.GetBool("no-stagger"); off {
		c.Grid.Stagger = false
	}
}

// debugEnabled reports whether --debug or TILEPAN_DEBUG asks for logging.
func debugEnabled(flags *pflag.FlagSet) bool {
	debug, _ := flags.GetBool("debug")
	return debug || log.EnabledFromEnv()
}

func runApp(cmd *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	applyFlags(cmd.Flags(), &cfg)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	debug := debugEnabled(cmd.Flags())
	if debug {
		logPath, _ := cmd.Flags().GetString("log-file")
		cleanup, err := log.Init(logPath)
		if err != nil {
			return err
		}
		defer cleanup()
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}()

	zone.NewGlobal()

	model := app.New(app.Options{
		Config: cfg,
		Debug:  debug,
		Tracer: provider.Tracer(),
	})
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// configTarget is the file config subcommands write to.
func configTarget() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return localConfigPath
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
