package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MorenoLaQuatra/audiocaps-download/internal/config"
)

// validConfigKeys lists all supported configuration keys.
var validConfigKeys = []string{
	config.KeyDataRoot,
	config.KeyWorkers,
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/audiocaps-download/config.
Settings can also be overridden via environment variables.

Supported settings:
  data-root    Default data root for clips and CSVs (env: AUDIOCAPS_DATA_ROOT)
  workers      Default parallel workers per split (env: AUDIOCAPS_WORKERS)`,
		Example: `  audiocaps-download config set data-root ~/data/audiocaps
  audiocaps-download config get data-root
  audiocaps-download config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Supported keys:
  data-root    Default data root for clips and CSVs
  workers      Default parallel workers per split

The data root directory will be created if it doesn't exist.`,
		Example: `  audiocaps-download config set data-root ~/data/audiocaps
  audiocaps-download config set workers 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return runConfigSet(env, key, value)
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  audiocaps-download config get data-root`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  audiocaps-download config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	// Validate key.
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, validConfigKeys)
	}

	// Key-specific validation.
	switch key {
	case config.KeyDataRoot:
		// Expand ~ and validate directory.
		expanded := config.ExpandPath(value)
		if err := config.EnsureDataRoot(expanded); err != nil {
			return fmt.Errorf("invalid data-root: %w", err)
		}
		// Store the expanded path for consistency.
		value = expanded
	case config.KeyWorkers:
		w, err := strconv.Atoi(value)
		if err != nil || w < 1 {
			return fmt.Errorf("invalid workers value %q: must be a positive integer", value)
		}
	}

	// Save to config file.
	if err := env.Config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	// Validate key.
	if !isValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, validConfigKeys)
	}

	value, err := env.Config.Get(key)
	if err != nil {
		return err
	}

	// Check environment variable fallback.
	if value == "" {
		switch key {
		case config.KeyDataRoot:
			value = env.Getenv(config.EnvDataRoot)
		case config.KeyWorkers:
			value = env.Getenv(config.EnvWorkers)
		}
	}

	if value != "" {
		fmt.Println(value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := env.Config.List()
	if err != nil {
		return err
	}

	// Add environment variable values for completeness.
	envFallbacks := map[string]string{
		config.KeyDataRoot: config.EnvDataRoot,
		config.KeyWorkers:  config.EnvWorkers,
	}
	for key, envVar := range envFallbacks {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(envVar); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Println("No configuration set.")
		fmt.Println("\nAvailable settings:")
		for _, key := range validConfigKeys {
			fmt.Printf("  %s\n", key)
		}
		return nil
	}

	for key, value := range data {
		fmt.Printf("%s=%s\n", key, value)
	}

	return nil
}

// isValidConfigKey checks if a key is a valid configuration key.
func isValidConfigKey(key string) bool {
	return slices.Contains(validConfigKeys, key)
}
