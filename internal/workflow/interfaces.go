// Package workflow glues the git gateway, message generation and user
// confirmation into the commit, add and ship flows.
package workflow

import (
	"context"

	"github.com/samzong/gsc/internal/commitplan"
	"github.com/samzong/gsc/internal/git"
	"github.com/samzong/gsc/internal/llm"
)

// Repository is the gateway plus the extra git operations the flows need.
type Repository interface {
	commitplan.Gateway
	CheckGitRepository(ctx context.Context) error
	StagedDiff(ctx context.Context) (string, error)
	AddAll(ctx context.Context) error
	HasUpstream(ctx context.Context) bool
	PushUpstream(ctx context.Context, branch string) error
}

// BranchRepository is what the branch flow needs from git.
type BranchRepository interface {
	CheckGitRepository(ctx context.Context) error
	CreateBranch(ctx context.Context, name string) error
}

// LLMClient abstracts LLM operations for testability.
type LLMClient interface {
	GenerateCommitMessage(ctx context.Context, prompt string, model string) (string, error)
	GenerateBranchName(ctx context.Context, prompt string, model string) (string, error)
}

var (
	_ Repository       = (*git.Client)(nil)
	_ BranchRepository = (*git.Client)(nil)
	_ LLMClient        = (*llm.Client)(nil)
)
