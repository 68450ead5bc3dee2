package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/samzong/gsc/internal/config"
	"github.com/samzong/gsc/internal/git"
	"github.com/samzong/gsc/internal/llm"
	"github.com/samzong/gsc/internal/ui"
	"github.com/samzong/gsc/internal/workflow"
)

var (
	cfgFile   string
	noVerify  bool
	dryRun    bool
	addAll    bool
	split     bool
	noSplit   bool
	merge     bool
	issueNum  string
	autoYes   bool
	configErr error
	verbose   bool
	signoff   bool
	rootCmd   = &cobra.Command{
		Use:   "gsc [paths...]",
		Short: "gsc - Git Scoped Commits",
		Long: `gsc is a CLI tool that generates git commit messages from staged changes using LLM. ` +
			`It can split one staged change set into a commit per top-level module, ` +
			`or merge them into a single commit.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return configErrorf(configErr)
			}
			return handleErrors(runCommit(cmd.Context(), args), addAll)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func Execute() error {
	return rootCmd.Execute()
}

// SetContext sets the context used by every command.
func SetContext(ctx context.Context) {
	rootCmd.SetContext(ctx)
}

// RootCmd exposes the command tree for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $XDG_CONFIG_HOME/gsc/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Show git commands and debug logs")

	addCommitFlags(rootCmd)
	addSplitFlags(rootCmd)
	rootCmd.Flags().BoolVarP(&addAll, "all", "a", false,
		"Automatically add all changes to the staging area before committing")
}

func addSplitFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&split, "split", false, "Split changes into one commit per scope")
	cmd.Flags().BoolVar(&noSplit, "no-split", false, "Commit all changes together even if split is configured")
	cmd.Flags().BoolVar(&merge, "merge", false, "In split mode, merge the scoped messages into one commit (requires --split or split: true)")
	cmd.MarkFlagsMutuallyExclusive("split", "no-split")
	cmd.MarkFlagsMutuallyExclusive("merge", "no-split")
}

// addCommitFlags registers the flags shared by every committing command.
func addCommitFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip pre-commit hooks")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Generate message only, do not commit")
	cmd.Flags().StringVar(&issueNum, "issue", "", "Optional issue number")
	cmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "Automatically confirm the commit message")
	cmd.Flags().BoolVarP(&signoff, "signoff", "s", false, "Add a Signed-off-by trailer")
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

func configErrorf(err error) error {
	return fmt.Errorf("configuration error: %w", err)
}

func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func handleErrors(err error, addAllFlag bool) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, workflow.ErrNoChanges) && !addAllFlag {
		return fmt.Errorf("%w\nHint: You can use -a or --all to automatically add all changes to the staging area", err)
	}
	return err
}

// splitEnabled resolves --split/--no-split against the configured default.
func splitEnabled(cfg *config.Config) bool {
	switch {
	case split:
		return true
	case noSplit:
		return false
	}
	return cfg.Split
}

var errMergeWithoutSplit = errors.New("--merge only applies in split mode; pass --split or set split: true in the config")

// splitMode resolves split mode and rejects --merge when split is off.
func splitMode(cfg *config.Config) (bool, error) {
	on := splitEnabled(cfg)
	if merge && !on {
		return false, errMergeWithoutSplit
	}
	return on, nil
}

type clients struct {
	cfg  *config.Config
	git  *git.Client
	gen  *workflow.Generator
	log  zerolog.Logger
	errW io.Writer
	outW io.Writer
}

// newClients loads configuration and builds the git and LLM clients.
func newClients(ctx context.Context) (*clients, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg, err = requireAPIKey(ctx, cfg); err != nil {
		return nil, err
	}

	errW := errWriter()
	gitClient := git.NewClient(git.Options{
		Verbose:  verbose,
		Logger:   errW,
		NoVerify: noVerify,
		Signoff:  signoff,
	})
	llmClient := llm.NewClient(llm.Options{
		APIKey:  cfg.APIKey,
		APIBase: cfg.APIBase,
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	})

	return &clients{
		cfg:  cfg,
		git:  gitClient,
		gen:  workflow.NewGenerator(llmClient, cfg),
		log:  newLogger(errW),
		errW: errW,
		outW: outWriter(),
	}, nil
}

// requireAPIKey offers the init wizard on a terminal when no key is set and
// returns the reloaded configuration.
func requireAPIKey(ctx context.Context, cfg *config.Config) (*config.Config, error) {
	if cfg.APIKey != "" || dryRun {
		return cfg, nil
	}
	if !ui.IsTerminal(os.Stdin) {
		return nil, llm.ErrMissingAPIKey
	}
	ok, err := ensureLLMConfigured(ctx, cfg, os.Stdin, errWriter(), runInitWizard)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, llm.ErrMissingAPIKey
	}
	return config.GetConfig()
}

func runCommit(ctx context.Context, paths []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	splitOn, err := splitMode(cfg)
	if err != nil {
		return err
	}

	c, err := newClients(ctx)
	if err != nil {
		return err
	}

	flow := workflow.NewCommitFlow(c.git, c.gen, c.cfg, workflow.CommitOptions{
		AddAll:    addAll,
		Split:     splitOn,
		Merge:     merge,
		AutoYes:   autoYes,
		DryRun:    dryRun,
		IssueNum:  issueNum,
		ErrWriter: c.errW,
		OutWriter: c.outW,
		Logger:    c.log,
	})

	if len(paths) > 0 {
		_, err = workflow.NewAddFlow(c.git, flow, c.errW).Run(ctx, paths)
		return err
	}
	_, err = flow.Run(ctx)
	return err
}
