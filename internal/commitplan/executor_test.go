package commitplan

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samzong/gsc/internal/diffsplit"
)

func threeGroupPlan() Plan {
	return Plan{
		{Group: diffsplit.ScopeGroup{Scope: "api", Files: []string{"api/a.go"}}, Message: "feat(api): a"},
		{Group: diffsplit.ScopeGroup{Scope: "cli", Files: []string{"cli/b.go", "cli/c.go"}}, Message: "fix(cli): b"},
		{Group: diffsplit.ScopeGroup{Scope: "web", Files: []string{"web/d.ts"}}, Message: "feat(web): d"},
	}
}

func stagedGateway(plan Plan) *fakeGateway {
	return &fakeGateway{staged: plan.Files()}
}

func TestExecuteSeparately_AllSucceed(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)

	var progress []string
	out := NewExecutor(gw, WithProgress(func(_ int, e Entry) {
		progress = append(progress, e.Group.Scope)
	})).ExecuteSeparately(context.Background(), plan)

	assert.Equal(t, 3, out.Committed)
	assert.Equal(t, 3, out.Total)
	assert.True(t, out.Succeeded())
	assert.NoError(t, out.Err())
	assert.Nil(t, out.Restaged)
	assert.Equal(t, []string{"feat(api): a", "fix(cli): b", "feat(web): d"}, gw.commits)
	assert.Equal(t, []string{"api", "cli", "web"}, progress)
	assert.Equal(t, 1, gw.count("unstage"), "only the initial full stage needs clearing")
}

func TestExecuteSeparately_StagesOnlyGroupFiles(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)

	NewExecutor(gw).ExecuteSeparately(context.Background(), plan)

	var staged [][]string
	for _, c := range gw.calls {
		if c.op == "stage" {
			staged = append(staged, c.files)
		}
	}
	assert.Equal(t, [][]string{{"api/a.go"}, {"cli/b.go", "cli/c.go"}, {"web/d.ts"}}, staged)
}

func TestExecuteSeparately_CommitFailsOnSecondGroup(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)
	gw.failCommitAt = 2

	out := NewExecutor(gw).ExecuteSeparately(context.Background(), plan)

	assert.Equal(t, 1, out.Committed)
	assert.True(t, out.Succeeded())
	require.NotNil(t, out.Failure)
	assert.Equal(t, 1, out.Failure.Index)
	assert.Equal(t, "cli", out.Failure.Scope)
	assert.Equal(t, "commit", out.Failure.Step)
	assert.Contains(t, out.Err().Error(), "pre-commit hook rejected commit 2")

	restage, ok := gw.last("stage")
	require.True(t, ok)
	assert.Equal(t, []string{"cli/b.go", "cli/c.go", "web/d.ts"}, restage.files)
	assert.Equal(t, restage.files, out.Restaged)
	assert.Equal(t, 2, gw.count("commit"), "no later group is attempted")
}

func TestExecuteSeparately_FirstGroupFails(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)
	gw.failCommitAt = 1

	out := NewExecutor(gw).ExecuteSeparately(context.Background(), plan)

	assert.Equal(t, 0, out.Committed)
	assert.False(t, out.Succeeded())
	require.Error(t, out.Err())
	assert.ElementsMatch(t, plan.Files(), out.Restaged)
}

func TestExecuteSeparately_StageFailure(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)
	gw.failStageAt = 3 // stage calls: api, cli, web

	out := NewExecutor(gw).ExecuteSeparately(context.Background(), plan)

	assert.Equal(t, 2, out.Committed)
	require.NotNil(t, out.Failure)
	assert.Equal(t, "web", out.Failure.Scope)
	assert.Equal(t, "stage", out.Failure.Step)
	assert.Equal(t, []string{"web/d.ts"}, out.Restaged)
}

func TestExecuteSeparately_UnstageFailure(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)
	gw.failUnstage = true

	out := NewExecutor(gw).ExecuteSeparately(context.Background(), plan)

	assert.Equal(t, 0, out.Committed)
	require.NotNil(t, out.Failure)
	assert.Equal(t, "unstage", out.Failure.Step)
	assert.Equal(t, 0, gw.count("commit"))
}

func TestExecuteSeparately_RestageFailureDoesNotMaskOriginal(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)
	gw.failCommitAt = 2
	gw.failStageAt = 3 // api, cli, then the re-stage

	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	out := NewExecutor(gw, WithLogger(logger)).ExecuteSeparately(context.Background(), plan)

	assert.Equal(t, 1, out.Committed)
	require.Error(t, out.RestageErr)
	assert.Contains(t, out.Err().Error(), "pre-commit hook rejected")
	assert.NotContains(t, out.Err().Error(), "pathspec")
	assert.Contains(t, logs.String(), "best-effort re-stage failed")
}

func TestExecuteSeparately_DryRun(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)

	out := NewExecutor(gw, WithDryRun(true)).ExecuteSeparately(context.Background(), plan)

	assert.Equal(t, 0, out.Committed)
	assert.NoError(t, out.Err())
	assert.Empty(t, gw.calls)
}

func TestExecuteMerged(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)

	out := NewExecutor(gw).ExecuteMerged(context.Background(), plan)

	assert.Equal(t, 1, out.Committed)
	assert.True(t, out.Succeeded())
	require.Len(t, gw.commits, 1)
	assert.Equal(t, "feat(api): a\n\nfix(cli): b\n\nfeat(web): d", gw.commits[0])
	assert.Equal(t, 0, gw.count("stage"))
	assert.Equal(t, 0, gw.count("unstage"))
}

func TestExecuteMerged_Failure(t *testing.T) {
	plan := threeGroupPlan()
	gw := stagedGateway(plan)
	gw.failCommitAt = 1

	out := NewExecutor(gw).ExecuteMerged(context.Background(), plan)

	assert.False(t, out.Succeeded())
	require.Error(t, out.Err())
	assert.Equal(t, "api,cli,web", out.Failure.Scope)
}

func TestExecuteMerged_EmptyPlan(t *testing.T) {
	out := NewExecutor(&fakeGateway{}).ExecuteMerged(context.Background(), nil)
	assert.ErrorIs(t, out.Err(), ErrEmptyPlan)
}

func TestGroupError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&GroupError{Index: 2, Scope: "docs", Step: "stage", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "group 3 (docs) failed to stage: boom", err.Error())
}
