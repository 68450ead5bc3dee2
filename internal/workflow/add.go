package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samzong/gsc/internal/ui"
)

// AddFlow stages paths and then runs the commit flow over the stage.
type AddFlow struct {
	repo   Repository
	commit *CommitFlow
	out    *ui.Printer
}

func NewAddFlow(repo Repository, commit *CommitFlow, errWriter io.Writer) *AddFlow {
	return &AddFlow{repo: repo, commit: commit, out: ui.NewPrinter(errWriter)}
}

// Run stages paths and commits. Files this run staged are unstaged again
// when staging fails part way, the user cancels, or the run is a dry run;
// anything staged before the run is left alone.
func (a *AddFlow) Run(ctx context.Context, paths []string) (Result, error) {
	if err := a.repo.CheckGitRepository(ctx); err != nil {
		return Result{}, err
	}

	before, err := a.repo.StagedFiles(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list staged files: %w", err)
	}

	if err := a.repo.Stage(ctx, paths); err != nil {
		a.rollback(ctx, before)
		return Result{}, fmt.Errorf("failed to stage files: %w", err)
	}

	staged, err := a.repo.StagedFiles(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list staged files: %w", err)
	}
	a.out.Success("Staged %d file(s): %s", len(staged), strings.Join(staged, ", "))

	result, err := a.commit.Run(ctx)
	if result.Cancelled || (err == nil && a.commit.opts.DryRun) {
		a.rollback(ctx, before)
		a.out.Info("Staged files have been unstaged.")
	}
	return result, err
}

// rollback unstages whatever is staged now but was not in before.
func (a *AddFlow) rollback(ctx context.Context, before []string) {
	after, err := a.repo.StagedFiles(ctx)
	if err != nil {
		a.out.Warning("Could not list staged files to roll back: %v", err)
		return
	}
	added := newlyStaged(before, after)
	if len(added) == 0 {
		return
	}
	if err := a.repo.Unstage(ctx, added); err != nil {
		a.out.Warning("Could not unstage %s: %v", strings.Join(added, ", "), err)
	}
}

func newlyStaged(before, after []string) []string {
	seen := make(map[string]struct{}, len(before))
	for _, f := range before {
		seen[f] = struct{}{}
	}
	var added []string
	for _, f := range after {
		if _, ok := seen[f]; !ok {
			added = append(added, f)
		}
	}
	return added
}
