package commitplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type call struct {
	op    string
	files []string
	arg   string
}

// fakeGateway keeps an in-memory stage and records every call.
type fakeGateway struct {
	staged  []string
	calls   []call
	commits []string

	failCommitAt int // 1-based commit call number that fails, 0 for never
	failStageAt  int // 1-based stage call number that fails
	failUnstage  bool
	failPush     bool
	failUndo     bool

	commitN int
	stageN  int
}

func (f *fakeGateway) IsRepository(context.Context) bool { return true }

func (f *fakeGateway) StagedFiles(context.Context) ([]string, error) {
	f.calls = append(f.calls, call{op: "staged"})
	return append([]string(nil), f.staged...), nil
}

func (f *fakeGateway) Stage(_ context.Context, files []string) error {
	f.stageN++
	f.calls = append(f.calls, call{op: "stage", files: append([]string(nil), files...)})
	if f.failStageAt == f.stageN {
		return errors.New("pathspec did not match any files")
	}
	f.staged = append(f.staged, files...)
	return nil
}

func (f *fakeGateway) Unstage(_ context.Context, files []string) error {
	f.calls = append(f.calls, call{op: "unstage", files: append([]string(nil), files...)})
	if f.failUnstage {
		return errors.New("unstage failed")
	}
	drop := make(map[string]bool, len(files))
	for _, file := range files {
		drop[file] = true
	}
	kept := f.staged[:0]
	for _, s := range f.staged {
		if !drop[s] {
			kept = append(kept, s)
		}
	}
	f.staged = kept
	return nil
}

func (f *fakeGateway) Commit(_ context.Context, message string) error {
	f.commitN++
	f.calls = append(f.calls, call{op: "commit", arg: message})
	if f.failCommitAt == f.commitN {
		return fmt.Errorf("pre-commit hook rejected commit %d", f.commitN)
	}
	if len(f.staged) == 0 {
		return errors.New("nothing to commit")
	}
	f.commits = append(f.commits, message)
	f.staged = nil
	return nil
}

func (f *fakeGateway) UndoLastCommitKeepStaged(context.Context) error {
	f.calls = append(f.calls, call{op: "undo"})
	if f.failUndo {
		return errors.New("undo failed")
	}
	return nil
}

func (f *fakeGateway) Push(context.Context) error {
	f.calls = append(f.calls, call{op: "push"})
	if f.failPush {
		return errors.New("remote rejected")
	}
	return nil
}

func (f *fakeGateway) CurrentBranch(context.Context) (string, error) {
	return "main", nil
}

func (f *fakeGateway) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (f *fakeGateway) last(op string) (call, bool) {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].op == op {
			return f.calls[i], true
		}
	}
	return call{}, false
}

type fakeGenerator struct {
	wholeCalls  int
	scopedCalls []string
	failScope   string
}

func (g *fakeGenerator) Generate(_ context.Context, diff string) (string, error) {
	g.wholeCalls++
	return "chore: update " + firstLine(diff), nil
}

func (g *fakeGenerator) GenerateScoped(_ context.Context, scope string, files []string, _ string) (string, error) {
	g.scopedCalls = append(g.scopedCalls, scope)
	if scope == g.failScope {
		return "", errors.New("provider returned empty content")
	}
	return fmt.Sprintf("feat(%s): touch %s", scope, strings.Join(files, ",")), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
