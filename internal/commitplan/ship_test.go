package commitplan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samzong/gsc/internal/diffsplit"
)

func shipPlan() Plan {
	return Plan{{Group: diffsplit.ScopeGroup{Scope: "root", Files: []string{"a.go"}}, Message: "feat: ship it"}}
}

func TestShip_Success(t *testing.T) {
	gw := &fakeGateway{staged: []string{"a.go"}}

	out := NewShipper(gw).Ship(context.Background(), shipPlan())

	assert.True(t, out.Committed)
	assert.True(t, out.Pushed)
	assert.False(t, out.Compensated)
	assert.NoError(t, out.Err())
	assert.Equal(t, 0, gw.count("undo"))
}

func TestShip_PushFailureUndoesOnce(t *testing.T) {
	gw := &fakeGateway{staged: []string{"a.go"}, failPush: true}

	out := NewShipper(gw).Ship(context.Background(), shipPlan())

	assert.True(t, out.Committed)
	assert.False(t, out.Pushed)
	assert.True(t, out.Compensated)
	assert.True(t, out.IsPushFailure())
	assert.Equal(t, 1, gw.count("undo"))
	require.Error(t, out.Err())
	assert.Contains(t, out.Err().Error(), "remote rejected")
	assert.ErrorIs(t, out.Err(), out.PushErr)
}

func TestShip_UndoFailureReported(t *testing.T) {
	gw := &fakeGateway{staged: []string{"a.go"}, failPush: true, failUndo: true}

	out := NewShipper(gw).Ship(context.Background(), shipPlan())

	assert.False(t, out.Compensated)
	require.Error(t, out.UndoErr)
	assert.Contains(t, out.Err().Error(), "undoing the commit also failed")
	assert.Equal(t, 1, gw.count("undo"))
}

func TestShip_CommitFailureSkipsPush(t *testing.T) {
	gw := &fakeGateway{failCommitAt: 1}

	out := NewShipper(gw).Ship(context.Background(), shipPlan())

	assert.False(t, out.Committed)
	require.Error(t, out.Err())
	assert.Equal(t, 0, gw.count("push"))
	assert.Equal(t, 0, gw.count("undo"))
}

func TestShip_MergesPlan(t *testing.T) {
	gw := &fakeGateway{staged: []string{"a", "b"}}
	plan := Plan{{Message: "one"}, {Message: "two"}}

	out := NewShipper(gw).Ship(context.Background(), plan)

	require.NoError(t, out.Err())
	assert.Equal(t, []string{"one\n\ntwo"}, gw.commits)
}

func TestShip_CustomPush(t *testing.T) {
	gw := &fakeGateway{staged: []string{"a.go"}}
	pushed := false
	custom := func(context.Context) error {
		pushed = true
		return errors.New("no upstream")
	}

	out := NewShipper(gw, WithPushFunc(custom)).Ship(context.Background(), shipPlan())

	assert.True(t, pushed)
	assert.Equal(t, 0, gw.count("push"))
	assert.True(t, out.Compensated)
}
