package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samzong/gsc/internal/ui"
)

var ErrEmptyDescription = errors.New("branch description is empty")

// BranchNamer turns a description of upcoming work into a branch name.
type BranchNamer interface {
	GenerateBranchName(ctx context.Context, description string) (string, error)
}

type BranchOptions struct {
	// Checkout creates the branch and switches to it.
	Checkout bool

	ErrWriter io.Writer
	OutWriter io.Writer
}

// BranchFlow suggests a branch name and optionally checks it out.
type BranchFlow struct {
	repo  BranchRepository
	namer BranchNamer
	opts  BranchOptions
	out   *ui.Printer
}

func NewBranchFlow(repo BranchRepository, namer BranchNamer, opts BranchOptions) *BranchFlow {
	return &BranchFlow{repo: repo, namer: namer, opts: opts, out: ui.NewPrinter(opts.ErrWriter)}
}

// Run returns the generated name. The name is printed to OutWriter on its
// own line so it can be captured by scripts.
func (b *BranchFlow) Run(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrEmptyDescription
	}
	if err := b.repo.CheckGitRepository(ctx); err != nil {
		return "", err
	}

	name, err := ui.WithSpinner("Generating branch name...", func() (string, error) {
		return b.namer.GenerateBranchName(ctx, description)
	})
	if err != nil {
		return "", err
	}
	fmt.Fprintln(b.opts.OutWriter, name)

	if !b.opts.Checkout {
		b.out.Info("Use --checkout to create and switch to this branch.")
		return name, nil
	}

	if err := b.repo.CreateBranch(ctx, name); err != nil {
		return name, fmt.Errorf("failed to create branch: %w", err)
	}
	b.out.Success("Switched to new branch '%s'.", name)
	return name, nil
}
