package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/samzong/gsc/internal/branch"
	"github.com/samzong/gsc/internal/commitplan"
	"github.com/samzong/gsc/internal/config"
	"github.com/samzong/gsc/internal/diffsplit"
	"github.com/samzong/gsc/internal/formatter"
	"github.com/samzong/gsc/internal/llm"
)

// ErrNoBranchName is returned when neither the model reply nor the
// description yields a usable branch name.
var ErrNoBranchName = errors.New("could not derive a branch name from the description")

// Generator produces commit messages and branch names through the configured model.
type Generator struct {
	llm LLMClient
	cfg *config.Config
}

var (
	_ commitplan.MessageGenerator = (*Generator)(nil)
	_ BranchNamer                 = (*Generator)(nil)
)

func NewGenerator(client LLMClient, cfg *config.Config) *Generator {
	return &Generator{llm: client, cfg: cfg}
}

func (g *Generator) Generate(ctx context.Context, wholeDiff string) (string, error) {
	files := diffsplit.Paths(diffsplit.Segment(wholeDiff))
	return g.complete(ctx, formatter.BuildPrompt(g.cfg, files, wholeDiff))
}

func (g *Generator) GenerateScoped(ctx context.Context, scope string, files []string, diff string) (string, error) {
	return g.complete(ctx, formatter.BuildScopedPrompt(g.cfg, scope, files, diff))
}

// GenerateBranchName asks the model for a branch name and cleans the reply.
// When the reply holds nothing usable the name is derived from description.
func (g *Generator) GenerateBranchName(ctx context.Context, description string) (string, error) {
	raw, err := g.llm.GenerateBranchName(ctx, branch.Prompt(description), g.cfg.Model)
	if err != nil {
		return "", fmt.Errorf("failed to generate branch name: %w", err)
	}
	if name := branch.Normalize(raw); name != "" {
		return name, nil
	}
	if name := branch.GenerateName(description); name != "" {
		return name, nil
	}
	return "", ErrNoBranchName
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	raw, err := g.llm.GenerateCommitMessage(ctx, prompt, g.cfg.Model)
	if err != nil {
		return "", fmt.Errorf("failed to generate commit message: %w", err)
	}
	message := formatter.FormatCommitMessage(raw)
	if message == "" {
		return "", llm.ErrEmptyResponse
	}
	return message, nil
}
