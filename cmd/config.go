package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/tilepan/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the tilepan config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default config file",
	Long: `Write the commented default config file.

Without a path the file goes to --config, or .tilepan/config.yaml when no
config file is in use. An existing file is left alone unless --force is set.

Examples:
  tilepan config init
  tilepan config init ~/.config/tilepan/config.yaml
  tilepan config init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config as YAML",
	Long: `Print the effective config, the config file layered over the defaults,
as YAML.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value",
	Long: `Set one dotted config key in the config file, keeping its comments.

The file is restored when the new value does not validate.

Examples:
  tilepan config set grid.stagger false
  tilepan config set auto_scroll.idle_delay 3s
  tilepan config set content.source catalog`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configTarget()
	if len(args) == 1 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if fileExists(path) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := configTarget()
	return setConfigValue(cmd, path, args[0], args[1])
}

// setConfigValue writes key=value into path and validates the result,
// restoring the previous contents when it fails.
func setConfigValue(cmd *cobra.Command, path, key, value string) error {
	prev, err := os.ReadFile(path) //nolint:gosec // G304: user config path
	existed := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := config.SetValue(path, key, value); err != nil {
		return err
	}

	if _, err := loadConfig(viper.New(), path); err != nil {
		if existed {
			_ = os.WriteFile(path, prev, 0o600)
		} else {
			_ = os.Remove(path)
		}
		return fmt.Errorf("setting %s: %w", key, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)
	return nil
}
