package workflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samzong/gsc/internal/commitplan"
	"github.com/samzong/gsc/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Model:          "test-model",
		Role:           "Developer",
		Style:          config.StyleConventional,
		PromptTemplate: config.DefaultPromptTemplate,
		MaxDiffChars:   config.DefaultMaxDiffChars,
	}
}

type flowHarness struct {
	repo     *fakeRepo
	gen      *fakeGen
	prompter *scriptedPrompter
	stderr   *bytes.Buffer
	stdout   *bytes.Buffer
}

func newCommitHarness(repo *fakeRepo, opts CommitOptions) (*CommitFlow, *flowHarness) {
	h := &flowHarness{
		repo:     repo,
		gen:      &fakeGen{},
		prompter: &scriptedPrompter{},
		stderr:   &bytes.Buffer{},
		stdout:   &bytes.Buffer{},
	}
	opts.ErrWriter = h.stderr
	opts.OutWriter = h.stdout
	opts.Logger = zerolog.Nop()
	flow := NewCommitFlow(repo, h.gen, testConfig(), opts)
	flow.SetPrompter(h.prompter)
	return flow, h
}

func TestCommitFlow_SingleMessage(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("a.go", "lib/b.go"), CommitOptions{})

	result, err := flow.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Committed)
	assert.Equal(t, []string{"feat: whole change 1"}, h.repo.commits)
	assert.Contains(t, h.stdout.String(), "feat: whole change 1")
	assert.Contains(t, h.stderr.String(), "Successfully committed changes!")
	assert.Zero(t, h.prompter.chooseN)
}

func TestCommitFlow_NoChanges(t *testing.T) {
	flow, _ := newCommitHarness(newFakeRepo(), CommitOptions{})

	_, err := flow.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestCommitFlow_AddAll(t *testing.T) {
	repo := newFakeRepo()
	repo.dirty = []string{"a.go"}
	flow, h := newCommitHarness(repo, CommitOptions{AddAll: true})

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.repo.commits, 1)
	assert.Contains(t, h.stderr.String(), "All changes have been added")
}

func TestCommitFlow_Regenerate(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("a.go"), CommitOptions{})
	h.prompter.actions = []Action{ActionRegenerate, ActionCommit}

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, h.gen.whole)
	assert.Equal(t, []string{"feat: whole change 2"}, h.repo.commits)
}

func TestCommitFlow_EditedMessage(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("a.go"), CommitOptions{IssueNum: "42"})
	h.prompter.edited = "fix: edited by hand"

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fix: edited by hand (#42)"}, h.repo.commits)
}

func TestCommitFlow_Cancel(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("a.go"), CommitOptions{})
	h.prompter.actions = []Action{ActionCancel}

	result, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Empty(t, h.repo.commits)
	assert.Equal(t, []string{"a.go"}, h.repo.staged)
}

func TestCommitFlow_DryRun(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("a.go"), CommitOptions{DryRun: true})

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.repo.commits)
	assert.Contains(t, h.stderr.String(), "Dry run")
}

func TestCommitFlow_DryRunAddAllRestoresStage(t *testing.T) {
	repo := newFakeRepo("pre.go")
	repo.dirty = []string{"a.go", "lib/b.go"}
	flow, h := newCommitHarness(repo, CommitOptions{AddAll: true, Split: true, AutoYes: true, DryRun: true})

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.repo.commits)
	assert.Equal(t, []string{"pre.go"}, h.repo.staged)
}

func TestCommitFlow_SplitWarnsAboutFilesPastTruncation(t *testing.T) {
	repo := newFakeRepo("api/a.go", "web/b.go", "web/c.go")
	flow, h := newCommitHarness(repo, CommitOptions{Split: true, AutoYes: true})
	// Each fake section is 53 bytes; the cut lands inside the third header.
	flow.cfg.MaxDiffChars = 110

	_, err := flow.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"feat(api): update", "feat(web): update"}, h.repo.commits)
	assert.Contains(t, h.stderr.String(), "1 staged file(s) fall past max_diff_chars and belong to no group: web/c.go")
	assert.Contains(t, h.stderr.String(), "Separate commits will leave them unstaged")
}

func TestCommitFlow_GeneratorError(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("a.go"), CommitOptions{})
	h.gen.err = errors.New("provider down")

	_, err := flow.Run(context.Background())
	assert.ErrorContains(t, err, "provider down")
	assert.Empty(t, h.repo.commits)
}

func TestCommitFlow_TruncationWarning(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("a.go", "b.go", "c.go"), CommitOptions{})
	flow.cfg.MaxDiffChars = 40

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, h.stderr.String(), "truncated")
}

func TestCommitFlow_SplitSeparately(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("cli/a.go", "cli/b.go", "web/d.ts"),
		CommitOptions{Split: true, AutoYes: true})

	result, err := flow.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Committed)
	assert.Equal(t, []string{"cli", "web"}, h.gen.scoped)
	assert.Equal(t, []string{"feat(cli): update", "feat(web): update"}, h.repo.commits)
	assert.Contains(t, h.stdout.String(), "cli/b.go")
	assert.Contains(t, h.stderr.String(), "[2/2] Committed: feat(web): update")
	assert.Zero(t, h.prompter.chooseN)
}

func TestCommitFlow_SplitMerged(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("cli/a.go", "web/d.ts"),
		CommitOptions{Split: true, Merge: true, IssueNum: "7"})

	result, err := flow.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Committed)
	require.Len(t, h.repo.commits, 1)
	assert.Equal(t, "feat(cli): update (#7)\n\nfeat(web): update", h.repo.commits[0])
}

func TestCommitFlow_SplitPromptChoice(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("cli/a.go", "web/d.ts"), CommitOptions{Split: true})
	h.prompter.choice = ChoiceCancel

	result, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.prompter.chooseN)
	assert.True(t, result.Cancelled)
	assert.Empty(t, h.repo.commits)
}

func TestCommitFlow_SplitSingleScopeUsesWholeDiff(t *testing.T) {
	flow, h := newCommitHarness(newFakeRepo("cli/a.go", "cli/b.go"), CommitOptions{Split: true})

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.gen.whole)
	assert.Empty(t, h.gen.scoped)
	assert.Zero(t, h.prompter.chooseN)
}

func TestCommitFlow_SplitPartialFailure(t *testing.T) {
	repo := newFakeRepo("api/x.go", "cli/a.go", "web/d.ts")
	repo.failCommitAt = 2
	flow, h := newCommitHarness(repo, CommitOptions{Split: true, AutoYes: true})

	result, err := flow.Run(context.Background())
	require.Error(t, err)

	var groupErr *commitplan.GroupError
	require.ErrorAs(t, err, &groupErr)
	assert.Equal(t, "cli", groupErr.Scope)
	assert.Equal(t, 1, result.Committed)
	assert.Equal(t, []string{"feat(api): update"}, repo.commits)
	assert.ElementsMatch(t, []string{"cli/a.go", "web/d.ts"}, repo.staged)
	assert.Contains(t, h.stderr.String(), "1 of 3 commits succeeded; remaining files are staged")
}

func TestWithIssue(t *testing.T) {
	plan := commitplan.Plan{{Message: "feat: a"}, {Message: "fix: b"}}

	assert.Equal(t, plan, withIssue(plan, "", false))

	separate := withIssue(plan, "3", false)
	assert.Equal(t, "feat: a (#3)", separate[0].Message)
	assert.Equal(t, "fix: b (#3)", separate[1].Message)
	assert.Equal(t, "feat: a", plan[0].Message)

	merged := withIssue(plan, "3", true)
	assert.Equal(t, "feat: a (#3)", merged[0].Message)
	assert.Equal(t, "fix: b", merged[1].Message)
}
