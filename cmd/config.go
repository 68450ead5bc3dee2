package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samzong/gsc/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage gsc configuration",
		Long:  `Manage gsc configuration: model, API credentials, message style and split defaults.`,
	}

	configGetCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Show the current configuration or a single key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if configErr != nil {
				return configErrorf(configErr)
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				value, err := configValue(cfg, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(outWriter(), value)
				return nil
			}
			printConfig(cfg)
			return nil
		},
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: fmt.Sprintf("Set a configuration value and save it.\n\nKeys: %s",
			strings.Join(config.GetSettableKeys(), ", ")),
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.GetSettableKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if configErr != nil {
				return configErrorf(configErr)
			}
			return setConfigValue(args[0], args[1])
		},
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if configErr != nil {
				return configErrorf(configErr)
			}
			fmt.Fprintln(outWriter(), config.ConfigFileUsed())
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func printConfig(cfg *config.Config) {
	w := outWriter()
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintf(w, "Role: %s\n", cfg.Role)
	fmt.Fprintf(w, "Model: %s\n", cfg.Model)
	fmt.Fprintf(w, "API Key: %s\n", maskAPIKey(cfg.APIKey))
	if cfg.APIBase != "" {
		fmt.Fprintf(w, "API Base URL: %s\n", cfg.APIBase)
	} else {
		fmt.Fprintln(w, "API Base URL: <not set>")
	}
	fmt.Fprintf(w, "Style: %s\n", cfg.Style)
	fmt.Fprintf(w, "Prompt Template: %s\n", cfg.PromptTemplate)
	fmt.Fprintf(w, "Max Diff Chars: %d\n", cfg.MaxDiffChars)
	fmt.Fprintf(w, "Split: %t\n", cfg.Split)
	fmt.Fprintf(w, "Timeout: %ds\n", cfg.Timeout)
	fmt.Fprintf(w, "Config File: %s\n", config.ConfigFileUsed())
}

func configValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "role":
		return cfg.Role, nil
	case "model":
		return cfg.Model, nil
	case "api_key":
		return maskAPIKey(cfg.APIKey), nil
	case "api_base":
		return cfg.APIBase, nil
	case "style":
		return cfg.Style, nil
	case "prompt_template":
		return cfg.PromptTemplate, nil
	case "max_diff_chars":
		return strconv.Itoa(cfg.MaxDiffChars), nil
	case "split":
		return strconv.FormatBool(cfg.Split), nil
	case "timeout":
		return strconv.Itoa(cfg.Timeout), nil
	}
	return "", unknownKeyError(key)
}

func setConfigValue(key, raw string) error {
	if !config.IsSettableKey(key) {
		return unknownKeyError(key)
	}

	value, err := parseConfigValue(key, raw)
	if err != nil {
		return err
	}

	config.SetConfigValue(key, value)
	if err := config.SaveConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if key == "api_key" {
		fmt.Fprintln(outWriter(), "API key has been set")
	} else {
		fmt.Fprintf(outWriter(), "%s has been set to: %v\n", key, value)
	}
	return nil
}

func parseConfigValue(key, raw string) (any, error) {
	switch key {
	case "style":
		if !config.IsValidStyle(raw) {
			return nil, fmt.Errorf("invalid style %q, must be one of: %s",
				raw, strings.Join(config.GetValidStyles(), ", "))
		}
		return raw, nil
	case "model":
		if !config.IsValidModel(raw) {
			return nil, fmt.Errorf("invalid model: %q", raw)
		}
		return raw, nil
	case "max_diff_chars", "timeout":
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
		}
		return n, nil
	case "split":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("split must be true or false, got %q", raw)
		}
		return b, nil
	}
	return raw, nil
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown configuration key %q, valid keys: %s",
		key, strings.Join(config.GetSettableKeys(), ", "))
}

func maskAPIKey(key string) string {
	switch {
	case key == "":
		return "<not set>"
	case len(key) <= 8:
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
