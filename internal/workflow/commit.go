package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/samzong/gsc/internal/commitplan"
	"github.com/samzong/gsc/internal/config"
	"github.com/samzong/gsc/internal/diffsplit"
	"github.com/samzong/gsc/internal/formatter"
	"github.com/samzong/gsc/internal/stringsutil"
	"github.com/samzong/gsc/internal/ui"
)

var ErrNoChanges = errors.New("no changes detected in the staging area files")

type CommitOptions struct {
	AddAll   bool
	Split    bool
	Merge    bool
	AutoYes  bool
	DryRun   bool
	IssueNum string

	ErrWriter io.Writer
	OutWriter io.Writer
	Logger    zerolog.Logger
}

// Result summarizes a flow run for callers that clean up afterwards.
type Result struct {
	Cancelled bool
	Committed int
}

type CommitFlow struct {
	repo     Repository
	gen      commitplan.MessageGenerator
	cfg      *config.Config
	opts     CommitOptions
	prompter Prompter
	out      *ui.Printer
}

func NewCommitFlow(repo Repository, gen commitplan.MessageGenerator, cfg *config.Config, opts CommitOptions) *CommitFlow {
	return &CommitFlow{
		repo:     repo,
		gen:      gen,
		cfg:      cfg,
		opts:     opts,
		prompter: &InteractivePrompter{ErrWriter: opts.ErrWriter},
		out:      ui.NewPrinter(opts.ErrWriter),
	}
}

func (f *CommitFlow) SetPrompter(p Prompter) {
	f.prompter = p
}

func (f *CommitFlow) Run(ctx context.Context) (Result, error) {
	if err := f.repo.CheckGitRepository(ctx); err != nil {
		return Result{}, err
	}

	before, err := f.handleStaging(ctx)
	if err != nil {
		return Result{}, err
	}
	if f.opts.DryRun && f.opts.AddAll {
		defer f.restoreStage(ctx, before)
	}

	diff, err := readStagedDiff(ctx, f.repo, f.cfg.MaxDiffChars, f.out)
	if err != nil {
		return Result{}, err
	}

	groups := diffsplit.Group(diffsplit.Segment(diff))
	if !f.opts.Split || len(groups) < 2 {
		return f.runSingle(ctx, diff, groups)
	}
	return f.runSplit(ctx, diff, groups)
}

// handleStaging stages everything when asked to and returns what was
// staged beforehand.
func (f *CommitFlow) handleStaging(ctx context.Context) ([]string, error) {
	if !f.opts.AddAll {
		return nil, nil
	}

	before, err := f.repo.StagedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}
	if err := f.repo.AddAll(ctx); err != nil {
		return nil, fmt.Errorf("git add failed: %w", err)
	}
	f.out.Info("All changes have been added to the staging area.")
	return before, nil
}

// restoreStage unstages files staged since before. A dry run must leave the
// index as it found it.
func (f *CommitFlow) restoreStage(ctx context.Context, before []string) {
	after, err := f.repo.StagedFiles(ctx)
	if err != nil {
		f.out.Warning("Could not list staged files to restore: %v", err)
		return
	}
	added := newlyStaged(before, after)
	if len(added) == 0 {
		return
	}
	if err := f.repo.Unstage(ctx, added); err != nil {
		f.out.Warning("Could not unstage %s: %v", strings.Join(added, ", "), err)
	}
}

// readStagedDiff returns the staged diff cut to the configured budget.
func readStagedDiff(ctx context.Context, repo Repository, maxChars int, out *ui.Printer) (string, error) {
	diff, err := repo.StagedDiff(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get git diff: %w", err)
	}
	if diff == "" {
		return "", ErrNoChanges
	}

	diff, truncated := formatter.TruncateDiff(diff, maxChars)
	if truncated {
		out.Warning("Warning: diff exceeds %d characters and was truncated; the message may not cover all changes.",
			maxChars)
	}
	return diff, nil
}

// runSingle drives the one-message confirm loop and commits everything staged.
func (f *CommitFlow) runSingle(ctx context.Context, diff string, groups []diffsplit.ScopeGroup) (Result, error) {
	message, cancelled, err := confirmMessage(ctx, f.gen, f.prompter, f.out, f.opts.OutWriter, diff, f.opts.AutoYes)
	if err != nil || cancelled {
		return Result{Cancelled: cancelled}, err
	}

	entry := commitplan.Entry{
		Group: diffsplit.ScopeGroup{
			Scope:        singleScope(groups),
			Files:        diffsplit.AllFiles(groups),
			CombinedText: diff,
		},
		Message: formatter.AppendIssue(message, f.opts.IssueNum),
	}
	outcome := f.executor().ExecuteMerged(ctx, commitplan.Plan{entry})
	if err := outcome.Err(); err != nil {
		return Result{}, fmt.Errorf("failed to commit changes: %w", err)
	}
	f.reportDone(outcome.Committed)
	return Result{Committed: outcome.Committed}, nil
}

func (f *CommitFlow) runSplit(ctx context.Context, diff string, groups []diffsplit.ScopeGroup) (Result, error) {
	f.warnUngrouped(ctx, groups)

	builder := commitplan.NewBuilder(f.gen)
	plan, err := ui.WithSpinner("Analyzing changes and generating commit messages...", func() (commitplan.Plan, error) {
		return builder.Build(ctx, groups, diff)
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to build commit plan: %w", err)
	}

	f.out.Success("\nGenerated %d scoped commit(s):", len(plan))
	ui.RenderPlan(f.opts.OutWriter, plan)

	choice, err := f.choose(plan)
	if err != nil {
		return Result{}, err
	}

	switch choice {
	case ChoiceCancel:
		f.out.Error("Commit cancelled by user")
		return Result{Cancelled: true}, nil
	case ChoiceMerge:
		plan = withIssue(plan, f.opts.IssueNum, true)
		outcome := f.executor().ExecuteMerged(ctx, plan)
		if err := outcome.Err(); err != nil {
			return Result{}, fmt.Errorf("failed to commit changes: %w", err)
		}
		f.reportDone(outcome.Committed)
		return Result{Committed: outcome.Committed}, nil
	default:
		plan = withIssue(plan, f.opts.IssueNum, false)
		outcome := f.separateExecutor(len(plan)).ExecuteSeparately(ctx, plan)
		return Result{Committed: outcome.Committed}, f.reportSeparate(outcome)
	}
}

// warnUngrouped names staged files that a truncated diff no longer covers.
// Separate commits unstage them with the first group and never stage them
// again.
func (f *CommitFlow) warnUngrouped(ctx context.Context, groups []diffsplit.ScopeGroup) {
	staged, err := f.repo.StagedFiles(ctx)
	if err != nil {
		return
	}
	missing := newlyStaged(diffsplit.AllFiles(groups), staged)
	if len(missing) == 0 {
		return
	}
	f.out.Warning("%d staged file(s) fall past max_diff_chars and belong to no group: %s",
		len(missing), strings.Join(missing, ", "))
	f.out.Warning("Separate commits will leave them unstaged; a merged commit includes them.")
}

func (f *CommitFlow) choose(plan commitplan.Plan) (PlanChoice, error) {
	switch {
	case f.opts.Merge:
		return ChoiceMerge, nil
	case f.opts.AutoYes:
		return ChoiceSeparate, nil
	}
	return f.prompter.ChoosePlan(plan)
}

func (f *CommitFlow) executor() *commitplan.Executor {
	return commitplan.NewExecutor(f.repo,
		commitplan.WithLogger(f.opts.Logger),
		commitplan.WithDryRun(f.opts.DryRun),
	)
}

func (f *CommitFlow) separateExecutor(total int) *commitplan.Executor {
	return commitplan.NewExecutor(f.repo,
		commitplan.WithLogger(f.opts.Logger),
		commitplan.WithDryRun(f.opts.DryRun),
		commitplan.WithProgress(func(i int, e commitplan.Entry) {
			f.out.Success("  [%d/%d] Committed: %s", i+1, total, stringsutil.FirstLine(e.Message))
		}),
	)
}

func (f *CommitFlow) reportDone(committed int) {
	if f.opts.DryRun {
		f.out.Info("Dry run mode, no actual commit")
		return
	}
	if committed == 1 {
		f.out.Success("Successfully committed changes!")
		return
	}
	f.out.Success("All %d commits successful.", committed)
}

func (f *CommitFlow) reportSeparate(outcome commitplan.Outcome) error {
	if outcome.Failure == nil {
		f.reportDone(outcome.Committed)
		return nil
	}

	f.out.Error("%v", outcome.Failure)
	f.out.Warning("%d of %d commits succeeded; remaining files are staged; reason: %v",
		outcome.Committed, outcome.Total, outcome.Failure.Err)
	if outcome.RestageErr != nil {
		f.out.Warning("Re-staging %d remaining file(s) failed: %v", len(outcome.Restaged), outcome.RestageErr)
	}
	return outcome.Err()
}

// confirmMessage generates a whole-diff message and loops on regenerate
// until the user accepts or cancels. The accepted message is returned.
func confirmMessage(ctx context.Context, gen commitplan.MessageGenerator, prompter Prompter,
	out *ui.Printer, stdout io.Writer, diff string, autoYes bool,
) (string, bool, error) {
	for {
		message, err := ui.WithSpinner("Generating commit message...", func() (string, error) {
			return gen.Generate(ctx, diff)
		})
		if err != nil {
			return "", false, err
		}

		out.Success("\nGenerated Commit Message:")
		fmt.Fprintln(stdout, message)

		action, editedMessage, err := prompter.GetConfirmation(message, autoYes)
		if err != nil {
			return "", false, err
		}

		switch action {
		case ActionCancel:
			out.Error("Commit cancelled by user")
			return "", true, nil
		case ActionRegenerate:
			out.Info("Regenerating commit message...")
			continue
		default:
			if editedMessage != "" {
				message = editedMessage
			}
			return message, false, nil
		}
	}
}

// withIssue tags subjects with the issue number. In merged form only the
// first subject is tagged since it heads the combined message.
func withIssue(plan commitplan.Plan, issueNum string, merged bool) commitplan.Plan {
	if issueNum == "" {
		return plan
	}
	tagged := make(commitplan.Plan, len(plan))
	copy(tagged, plan)
	for i := range tagged {
		if merged && i > 0 {
			break
		}
		tagged[i].Message = formatter.AppendIssue(tagged[i].Message, issueNum)
	}
	return tagged
}

func singleScope(groups []diffsplit.ScopeGroup) string {
	if len(groups) == 1 {
		return groups[0].Scope
	}
	return diffsplit.RootScope
}
