package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samzong/gsc/internal/commitplan"
)

// fakeRepo keeps an in-memory stage and working tree.
type fakeRepo struct {
	staged   []string
	dirty    []string
	branch   string
	upstream bool
	commits  []string
	pushes   []string
	undos    int
	unstaged [][]string

	failStage    bool
	failCommit   bool
	failPush     bool
	stagePart    []string // staged before a failing Stage returns
	commitN      int
	failCommitAt int
}

func newFakeRepo(staged ...string) *fakeRepo {
	return &fakeRepo{staged: staged, branch: "main", upstream: true}
}

func (r *fakeRepo) IsRepository(context.Context) bool        { return true }
func (r *fakeRepo) CheckGitRepository(context.Context) error { return nil }

func (r *fakeRepo) StagedFiles(context.Context) ([]string, error) {
	return append([]string(nil), r.staged...), nil
}

func (r *fakeRepo) StagedDiff(context.Context) (string, error) {
	var b strings.Builder
	for _, f := range r.staged {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n+change in %s\n", f, f, f)
	}
	return b.String(), nil
}

func (r *fakeRepo) AddAll(context.Context) error {
	r.addUnique(r.dirty)
	r.dirty = nil
	return nil
}

func (r *fakeRepo) Stage(_ context.Context, files []string) error {
	if r.failStage {
		r.addUnique(r.stagePart)
		return errors.New("pathspec 'missing' did not match any files")
	}
	r.addUnique(files)
	return nil
}

func (r *fakeRepo) addUnique(files []string) {
	for _, f := range files {
		found := false
		for _, s := range r.staged {
			if s == f {
				found = true
				break
			}
		}
		if !found {
			r.staged = append(r.staged, f)
		}
	}
}

func (r *fakeRepo) Unstage(_ context.Context, files []string) error {
	r.unstaged = append(r.unstaged, append([]string(nil), files...))
	drop := make(map[string]bool, len(files))
	for _, f := range files {
		drop[f] = true
	}
	var kept []string
	for _, s := range r.staged {
		if !drop[s] {
			kept = append(kept, s)
		}
	}
	r.staged = kept
	return nil
}

func (r *fakeRepo) Commit(_ context.Context, message string) error {
	r.commitN++
	if r.failCommit || r.failCommitAt == r.commitN {
		return errors.New("hook rejected commit")
	}
	if len(r.staged) == 0 {
		return errors.New("nothing to commit")
	}
	r.commits = append(r.commits, message)
	r.staged = nil
	return nil
}

func (r *fakeRepo) UndoLastCommitKeepStaged(context.Context) error {
	r.undos++
	return nil
}

func (r *fakeRepo) Push(context.Context) error {
	if r.failPush {
		return errors.New("remote rejected")
	}
	r.pushes = append(r.pushes, "push")
	return nil
}

func (r *fakeRepo) PushUpstream(_ context.Context, branch string) error {
	if r.failPush {
		return errors.New("remote rejected")
	}
	r.pushes = append(r.pushes, "upstream:"+branch)
	return nil
}

func (r *fakeRepo) HasUpstream(context.Context) bool { return r.upstream }

func (r *fakeRepo) CurrentBranch(context.Context) (string, error) { return r.branch, nil }

type fakeGen struct {
	whole  int
	scoped []string
	err    error
}

func (g *fakeGen) Generate(context.Context, string) (string, error) {
	g.whole++
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("feat: whole change %d", g.whole), nil
}

func (g *fakeGen) GenerateScoped(_ context.Context, scope string, _ []string, _ string) (string, error) {
	g.scoped = append(g.scoped, scope)
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("feat(%s): update", scope), nil
}

// scriptedPrompter replays fixed answers.
type scriptedPrompter struct {
	actions []Action
	edited  string
	choice  PlanChoice
	chooseN int
}

func (p *scriptedPrompter) GetConfirmation(string, bool) (Action, string, error) {
	if len(p.actions) == 0 {
		return ActionCommit, p.edited, nil
	}
	a := p.actions[0]
	p.actions = p.actions[1:]
	if a == ActionCommit {
		return a, p.edited, nil
	}
	return a, "", nil
}

func (p *scriptedPrompter) ChoosePlan(commitplan.Plan) (PlanChoice, error) {
	p.chooseN++
	return p.choice, nil
}
