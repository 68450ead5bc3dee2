package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/samzong/gsc/internal/config"
	"github.com/samzong/gsc/internal/llm"
	"github.com/samzong/gsc/internal/ui"
)

type initValues struct {
	apiKey  string
	model   string
	apiBase string
	style   string
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize gsc configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configErr != nil {
				return configErrorf(configErr)
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if err := runInitWizard(cmd.Context(), os.Stdin, outWriter(), cfg); err != nil {
				return err
			}
			fmt.Fprintln(outWriter(), "Initialization complete.")
			return nil
		},
	}

	saveConfigValues = func(v initValues) error {
		config.SetConfigValue("api_key", v.apiKey)
		config.SetConfigValue("model", v.model)
		config.SetConfigValue("api_base", v.apiBase)
		config.SetConfigValue("style", v.style)
		return config.SaveConfig()
	}

	testLLMConnection = func(ctx context.Context, v initValues, timeout time.Duration) error {
		client := llm.NewClient(llm.Options{APIKey: v.apiKey, APIBase: v.apiBase, Timeout: timeout})
		return client.TestConnection(ctx, v.model)
	}

	// readSecret reads the API key without echo when in is a terminal.
	readSecret = func(in io.Reader, readLine func() (string, error)) (string, error) {
		if f, ok := in.(*os.File); ok && ui.IsTerminal(f) {
			b, err := term.ReadPassword(int(f.Fd()))
			if err != nil {
				return "", fmt.Errorf("failed to read API key: %w", err)
			}
			return strings.TrimSpace(string(b)), nil
		}
		return readLine()
	}
)

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInitWizard(ctx context.Context, in io.Reader, out io.Writer, current *config.Config) error {
	cfg, err := initWizardConfig(current)
	if err != nil {
		return err
	}
	readLine := newTrimmedLineReader(in)
	fmt.Fprintln(out, "gsc init - configure your LLM settings")

	var v initValues
	if v.apiKey, err = promptAPIKey(in, out, cfg, readLine); err != nil {
		return err
	}
	if v.model, err = promptModel(out, cfg, readLine); err != nil {
		return err
	}
	if v.apiBase, err = promptAPIBase(out, cfg, readLine); err != nil {
		return err
	}
	if v.style, err = promptStyle(out, cfg, readLine); err != nil {
		return err
	}

	if err := saveConfigValues(v); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	return maybeTestConnection(ctx, out, v, time.Duration(cfg.Timeout)*time.Second, readLine)
}

func initWizardConfig(current *config.Config) (*config.Config, error) {
	if current != nil {
		return current, nil
	}
	return config.GetConfig()
}

func newTrimmedLineReader(in io.Reader) func() (string, error) {
	reader := bufio.NewReader(in)
	return func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if errors.Is(err, io.EOF) && line == "" {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func promptAPIKey(in io.Reader, out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	for {
		if cfg.APIKey != "" {
			fmt.Fprint(out, "API Key (leave blank to keep current): ")
		} else {
			fmt.Fprint(out, "API Key (required): ")
		}

		line, err := readSecret(in, readLine)
		if err != nil {
			return "", err
		}
		if line == "" {
			if cfg.APIKey != "" {
				return cfg.APIKey, nil
			}
			fmt.Fprintln(out, "API key is required.")
			continue
		}
		return line, nil
	}
}

func promptModel(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	modelDefault := cfg.Model
	if modelDefault == "" {
		modelDefault = config.DefaultModel
	}
	fmt.Fprintf(out, "Model (suggested: %s) (default: %s): ",
		strings.Join(config.GetSuggestedModels(), ", "), modelDefault)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return modelDefault, nil
	}
	return line, nil
}

func promptAPIBase(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	apiBaseLabel := cfg.APIBase
	if apiBaseLabel == "" {
		apiBaseLabel = "<empty>"
	}
	fmt.Fprintf(out, "API Base URL (default: %s): ", apiBaseLabel)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return cfg.APIBase, nil
	}
	return line, nil
}

func promptStyle(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	styleDefault := cfg.Style
	if !config.IsValidStyle(styleDefault) {
		styleDefault = config.DefaultStyle
	}
	for {
		fmt.Fprintf(out, "Commit style [%s] (default: %s): ",
			strings.Join(config.GetValidStyles(), "/"), styleDefault)

		line, err := readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return styleDefault, nil
		}
		if config.IsValidStyle(line) {
			return line, nil
		}
		fmt.Fprintf(out, "Unknown style %q.\n", line)
	}
}

func maybeTestConnection(ctx context.Context, out io.Writer, v initValues, timeout time.Duration,
	readLine func() (string, error),
) error {
	for {
		fmt.Fprint(out, "Test API connection now? [Y/n]: ")
		answer, err := readLine()
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			fmt.Fprintln(out, "Testing API connection...")
			if err := testLLMConnection(ctx, v, timeout); err != nil {
				fmt.Fprintf(out, "Connection test failed: %v\n", err)
				fmt.Fprintln(out, "You can re-run `gsc init` or update config with `gsc config set`.")
			} else {
				fmt.Fprintln(out, "Connection test succeeded.")
			}
			return nil
		case "n", "no":
			return nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}

// ensureLLMConfigured offers to run the init wizard when no API key is set.
// It reports whether a key is available afterwards.
func ensureLLMConfigured(
	ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer,
	initRunner func(context.Context, io.Reader, io.Writer, *config.Config) error,
) (bool, error) {
	current := cfg
	if current == nil {
		var err error
		current, err = config.GetConfig()
		if err != nil {
			return false, err
		}
	}
	if strings.TrimSpace(current.APIKey) != "" {
		return true, nil
	}

	fmt.Fprintln(out, "API key is not configured.")
	fmt.Fprintln(out, "An API key is required to generate commit messages.")

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Run `gsc init` now? [Y/n]: ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			fmt.Fprintln(out, "Initialization skipped. Run `gsc init` anytime to configure.")
			return false, nil
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "", "y", "yes":
			if err := initRunner(ctx, reader, out, current); err != nil {
				return false, err
			}
			return true, nil
		case "n", "no":
			fmt.Fprintln(out, "Initialization skipped. Run `gsc init` anytime to configure.")
			return false, nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}
