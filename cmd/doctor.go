package cmd

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/samzong/gsc/internal/config"
	"github.com/samzong/gsc/internal/git"
	"github.com/samzong/gsc/internal/llm"
	"github.com/samzong/gsc/internal/ui"
)

type doctorCheck struct {
	name string
	run  func(ctx context.Context) error
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that git, the repository and the configuration are usable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDoctor(cmd.Context(), defaultDoctorChecks(), ui.NewPrinter(outWriter()))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func defaultDoctorChecks() []doctorCheck {
	return []doctorCheck{
		{name: "git is installed", run: func(context.Context) error {
			_, err := exec.LookPath("git")
			return err
		}},
		{name: "inside a git repository", run: func(ctx context.Context) error {
			return git.NewClient(git.Options{}).CheckGitRepository(ctx)
		}},
		{name: "configuration is readable", run: func(context.Context) error {
			if configErr != nil {
				return configErr
			}
			_, err := config.GetConfig()
			return err
		}},
		{name: "configuration is valid", run: func(context.Context) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			return cfg.Validate()
		}},
		{name: "API key is set", run: func(context.Context) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if cfg.APIKey == "" {
				return llm.ErrMissingAPIKey
			}
			return nil
		}},
	}
}

// runDoctor runs every check, even after a failure, and reports a summary error.
func runDoctor(ctx context.Context, checks []doctorCheck, p *ui.Printer) error {
	failed := 0
	for _, c := range checks {
		if err := c.run(ctx); err != nil {
			failed++
			p.Error("✗ %s: %v", c.name, err)
			continue
		}
		p.Success("✓ %s", c.name)
	}
	if failed > 0 {
		return fmt.Errorf("doctor found %d problem(s)", failed)
	}
	p.Info("Config file: %s", config.ConfigFileUsed())
	return nil
}
