package commitplan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samzong/gsc/internal/diffsplit"
)

// ErrEmptyPlan is returned when there are no groups to plan or commit.
var ErrEmptyPlan = errors.New("nothing to commit: plan has no entries")

// Entry pairs a scope group with the message it will be committed under.
type Entry struct {
	Group   diffsplit.ScopeGroup
	Message string
}

// Plan is an ordered list of entries awaiting commit.
type Plan []Entry

// Files returns every file referenced by the plan in entry order.
func (p Plan) Files() []string {
	var files []string
	for _, e := range p {
		files = append(files, e.Group.Files...)
	}
	return files
}

// MergedMessage joins all messages with a blank line between them.
func (p Plan) MergedMessage() string {
	messages := make([]string, 0, len(p))
	for _, e := range p {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "\n\n")
}

// Builder obtains one message per group from a MessageGenerator.
type Builder struct {
	gen MessageGenerator
}

// NewBuilder returns a Builder that asks gen for every message.
func NewBuilder(gen MessageGenerator) *Builder {
	return &Builder{gen: gen}
}

// Build returns one entry per group in group order. A single group is
// described with the unscoped whole-diff form; several groups each get a
// scoped message built from their own files and combined text.
func (b *Builder) Build(ctx context.Context, groups []diffsplit.ScopeGroup, wholeDiff string) (Plan, error) {
	if len(groups) == 0 {
		return nil, ErrEmptyPlan
	}

	if len(groups) == 1 {
		msg, err := b.gen.Generate(ctx, wholeDiff)
		if err != nil {
			return nil, err
		}
		return Plan{{Group: groups[0], Message: msg}}, nil
	}

	plan := make(Plan, 0, len(groups))
	for _, g := range groups {
		msg, err := b.gen.GenerateScoped(ctx, g.Scope, g.Files, g.CombinedText)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", g.Scope, err)
		}
		plan = append(plan, Entry{Group: g, Message: msg})
	}
	return plan, nil
}
