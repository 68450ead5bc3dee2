package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/samzong/gsc/internal/commitplan"
	"github.com/samzong/gsc/internal/config"
	"github.com/samzong/gsc/internal/diffsplit"
	"github.com/samzong/gsc/internal/formatter"
	"github.com/samzong/gsc/internal/git"
	"github.com/samzong/gsc/internal/ui"
)

type ShipOptions struct {
	AutoYes  bool
	DryRun   bool
	IssueNum string

	ErrWriter io.Writer
	OutWriter io.Writer
	Logger    zerolog.Logger
}

// ShipFlow stages everything, commits it under one message and pushes.
type ShipFlow struct {
	repo     Repository
	gen      commitplan.MessageGenerator
	cfg      *config.Config
	opts     ShipOptions
	prompter Prompter
	out      *ui.Printer
}

func NewShipFlow(repo Repository, gen commitplan.MessageGenerator, cfg *config.Config, opts ShipOptions) *ShipFlow {
	return &ShipFlow{
		repo:     repo,
		gen:      gen,
		cfg:      cfg,
		opts:     opts,
		prompter: &InteractivePrompter{ErrWriter: opts.ErrWriter},
		out:      ui.NewPrinter(opts.ErrWriter),
	}
}

func (s *ShipFlow) SetPrompter(p Prompter) {
	s.prompter = p
}

func (s *ShipFlow) Run(ctx context.Context) (Result, error) {
	if err := s.repo.CheckGitRepository(ctx); err != nil {
		return Result{}, err
	}

	branch, err := s.repo.CurrentBranch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve current branch: %w", err)
	}
	if branch == git.DetachedHead {
		return Result{}, git.ErrDetachedHead
	}

	before, err := s.repo.StagedFiles(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list staged files: %w", err)
	}
	if err := s.repo.AddAll(ctx); err != nil {
		return Result{}, fmt.Errorf("git add failed: %w", err)
	}
	staged, err := s.repo.StagedFiles(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list staged files: %w", err)
	}
	if len(staged) == 0 {
		s.out.Info("No changes to ship.")
		return Result{}, nil
	}
	s.out.Success("Staged %d file(s): %s", len(staged), strings.Join(staged, ", "))

	diff, err := readStagedDiff(ctx, s.repo, s.cfg.MaxDiffChars, s.out)
	if err != nil {
		return Result{}, err
	}

	message, cancelled, err := confirmMessage(ctx, s.gen, s.prompter, s.out, s.opts.OutWriter, diff, s.opts.AutoYes)
	if err != nil {
		return Result{}, err
	}
	if cancelled {
		s.unstage(ctx, newlyStaged(before, staged))
		return Result{Cancelled: true}, nil
	}
	message = formatter.AppendIssue(message, s.opts.IssueNum)

	if s.opts.DryRun {
		s.out.Info("Dry run mode: would commit and push to '%s'", branch)
		s.unstage(ctx, newlyStaged(before, staged))
		return Result{}, nil
	}

	groups := diffsplit.Group(diffsplit.Segment(diff))
	plan := commitplan.Plan{{
		Group:   diffsplit.ScopeGroup{Scope: singleScope(groups), Files: staged, CombinedText: diff},
		Message: message,
	}}

	shipper := commitplan.NewShipper(s.repo,
		commitplan.WithShipLogger(s.opts.Logger),
		commitplan.WithPushFunc(s.pushFunc(branch)),
	)
	outcome := shipper.Ship(ctx, plan)
	if err := outcome.Err(); err != nil {
		if outcome.Compensated {
			s.out.Info("Commit has been undone. Changes are still staged.")
		}
		return Result{}, err
	}

	s.out.Success("Pushed to '%s'.", branch)
	return Result{Committed: 1}, nil
}

// pushFunc sets the upstream on the first push of a branch.
func (s *ShipFlow) pushFunc(branch string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if s.repo.HasUpstream(ctx) {
			return s.repo.Push(ctx)
		}
		return s.repo.PushUpstream(ctx, branch)
	}
}

func (s *ShipFlow) unstage(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}
	if err := s.repo.Unstage(ctx, files); err != nil {
		s.out.Warning("Could not unstage %s: %v", strings.Join(files, ", "), err)
		return
	}
	s.out.Info("Staged files have been unstaged.")
}
