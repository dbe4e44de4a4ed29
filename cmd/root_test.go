package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tilepan/internal/config"
	"github.com/zjrosen/tilepan/internal/content"
)

// isolate runs the test from an empty directory with an empty home, so no
// real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

// resetFlags restores every flag of c and its children to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)
	cfgFile = ""
	t.Cleanup(func() {
		viper.Reset()
		resetFlags(rootCmd)
		cfgFile = ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := loadConfig(viper.New(), "")
	require.NoError(t, err)

	want := config.Defaults()
	require.Equal(t, want.Grid, cfg.Grid)
	require.Equal(t, want.AutoScroll, cfg.AutoScroll)
	require.Equal(t, want.Content, cfg.Content)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grid:\n  stagger: false\n  cell_width: 30\n"), 0o600))

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	require.False(t, cfg.Grid.Stagger)
	require.Equal(t, 30, cfg.Grid.CellWidth)
	require.Equal(t, 7, cfg.Grid.CellHeight, "unset keys keep defaults")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := loadConfig(viper.New(), filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_LocalBeforeHome(t *testing.T) {
	isolate(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	homeDir := filepath.Join(home, ".config", "tilepan")
	require.NoError(t, os.MkdirAll(homeDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(homeDir, "config.yaml"), []byte("ui:\n  key_step: 9\n"), 0o600))

	cfg, err := loadConfig(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, 9, cfg.UI.KeyStep, "home config is used when there is no local one")

	require.NoError(t, os.MkdirAll(".tilepan", 0o750))
	require.NoError(t, os.WriteFile(localConfigPath, []byte("ui:\n  key_step: 2\n"), 0o600))

	cfg, err = loadConfig(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, 2, cfg.UI.KeyStep)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport:\n  reset_threshold: 0.7\n"), 0o600))

	_, err := loadConfig(viper.New(), path)
	require.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("catalog", "", "")
	flags.Bool("no-auto-scroll", false, "")
	flags.Bool("no-stagger", false, "")
	require.NoError(t, flags.Parse([]string{"--catalog", "tiles.db", "--no-auto-scroll", "--no-stagger"}))

	cfg := config.Defaults()
	applyFlags(flags, &cfg)
	require.Equal(t, string(content.SourceCatalog), cfg.Content.Source)
	require.Equal(t, "tiles.db", cfg.Content.Catalog)
	require.False(t, cfg.AutoScroll.Enabled)
	require.False(t, cfg.Grid.Stagger)
}

func TestApplyFlags_NoneSet(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("catalog", "", "")
	flags.Bool("no-auto-scroll", false, "")
	flags.Bool("no-stagger", false, "")

	cfg := config.Defaults()
	applyFlags(flags, &cfg)
	require.Equal(t, config.Defaults(), cfg)
}

func TestDebugEnabled(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("debug", false, "")

	t.Setenv("TILEPAN_DEBUG", "")
	require.False(t, debugEnabled(flags))

	t.Setenv("TILEPAN_DEBUG", "1")
	require.True(t, debugEnabled(flags))

	t.Setenv("TILEPAN_DEBUG", "")
	require.NoError(t, flags.Parse([]string{"--debug"}))
	require.True(t, debugEnabled(flags))
}

func TestConfigInit(t *testing.T) {
	isolate(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	require.Contains(t, out, "Wrote "+localConfigPath)

	data, err := os.ReadFile(localConfigPath)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	_, err = execute(t, "config", "init")
	require.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grid:\n  gap: 5\n"), 0o600))

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "gap: 5")
	require.Contains(t, out, "cell_width: 26")
}

func TestConfigSet(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))

	out, err := execute(t, "config", "set", "grid.stagger", "false", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "Set grid.stagger = false")

	cfg, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	require.False(t, cfg.Grid.Stagger)
}

func TestConfigSet_InvalidRestores(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = execute(t, "config", "set", "grid.cell_width", "0", "--config", path)
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestCatalogInitAndList(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tiles.db")

	out, err := execute(t, "catalog", "init", path, "--size", "3")
	require.NoError(t, err)
	require.Contains(t, out, "Wrote 3 tiles")

	_, err = execute(t, "catalog", "init", path)
	require.ErrorContains(t, err, "already has 3 tiles")

	out, err = execute(t, "catalog", "list", path)
	require.NoError(t, err)
	require.Contains(t, out, "picsum-1")
	require.Contains(t, out, "picsum-3")
	require.Contains(t, out, "https://picsum.photos/seed/2/600/400")

	out, err = execute(t, "catalog", "list", path, "--limit", "1")
	require.NoError(t, err)
	require.Contains(t, out, "picsum-1")
	require.NotContains(t, out, "picsum-2")
}

func TestCatalogInit_FromFile(t *testing.T) {
	dir := isolate(t)
	src := filepath.Join(dir, "tiles.yaml")
	require.NoError(t, content.WriteFile(src, []content.Item{
		{ID: "harbor", Title: "Quiet Harbor"},
		{ID: "ridge", Title: "Silver Ridge"},
	}))
	path := filepath.Join(dir, "tiles.db")

	out, err := execute(t, "catalog", "init", path, "--from", src)
	require.NoError(t, err)
	require.Contains(t, out, "Wrote 2 tiles")

	pool, err := content.LoadCatalog(context.Background(), path, 0)
	require.NoError(t, err)
	require.Equal(t, "Quiet Harbor", pool.Resolve(0).Title)
	require.Equal(t, "Silver Ridge", pool.Resolve(1).Title)
}

func TestCatalogInit_BadSize(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "catalog", "init", filepath.Join(dir, "t.db"), "--size", "0")
	require.ErrorContains(t, err, "--size must be positive")
}

func TestRun_InvalidConfigFails(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("drag:\n  dead_zone: -1\n"), 0o600))

	_, err := execute(t, "--config", path)
	require.Error(t, err, "the program never starts with an invalid config")
}
