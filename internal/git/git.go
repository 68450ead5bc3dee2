// Package git implements the version-control gateway over the git CLI.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samzong/gsc/internal/gitcmd"
	"github.com/samzong/gsc/internal/gitutil"
	"github.com/samzong/gsc/internal/stringsutil"
)

// DetachedHead is what CurrentBranch reports when HEAD is not on a branch.
const DetachedHead = "HEAD"

var (
	ErrNotRepository = errors.New("not a git repository (or any of the parent directories)")
	ErrDetachedHead  = errors.New("HEAD is detached; check out a branch first")
)

// Options configures a Client.
type Options struct {
	Verbose bool
	// Dir is the working directory for git; empty means the process cwd.
	Dir    string
	Logger io.Writer
	// NoVerify skips commit hooks.
	NoVerify bool
	// Signoff adds a Signed-off-by trailer.
	Signoff bool
}

// Client drives git through its CLI. All stage/commit state lives in the
// repository itself; the client keeps none.
type Client struct {
	runner     gitcmd.Runner
	commitArgs []string
}

// NewClient returns a Client for the repository at opts.Dir.
func NewClient(opts Options) *Client {
	var args []string
	if opts.NoVerify {
		args = append(args, "--no-verify")
	}
	if opts.Signoff {
		args = append(args, "-s")
	}
	return &Client{
		runner:     gitcmd.Runner{Verbose: opts.Verbose, Dir: opts.Dir, Logger: opts.Logger},
		commitArgs: args,
	}
}

func (c *Client) IsRepository(ctx context.Context) bool {
	result, err := c.runner.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && result.StdoutString(true) == "true"
}

func (c *Client) CheckGitRepository(ctx context.Context) error {
	if !c.IsRepository(ctx) {
		return ErrNotRepository
	}
	return nil
}

// rawPaths keeps git from octal-escaping non-ASCII bytes in path output, so
// the paths read back can be handed to add and reset verbatim.
var rawPaths = []string{"-c", "core.quotePath=false"}

// StagedDiff returns the full diff of the index against HEAD. Renames are
// reported as a deletion plus an addition so every path gets its own
// section and can be staged on its own.
func (c *Client) StagedDiff(ctx context.Context) (string, error) {
	args := append(append([]string{}, rawPaths...), "diff", "--cached", "--no-color", "--no-ext-diff", "--no-renames")
	result, err := c.runner.RunLogged(ctx, args...)
	if err != nil {
		return "", gitutil.WrapGitError("git diff --cached failed", result, err)
	}
	return result.StdoutString(false), nil
}

// StagedFiles lists staged paths exactly as they appear in the index.
func (c *Client) StagedFiles(ctx context.Context) ([]string, error) {
	args := append(append([]string{}, rawPaths...), "diff", "--cached", "--name-only", "-z", "--no-renames")
	result, err := c.runner.RunLogged(ctx, args...)
	if err != nil {
		return nil, gitutil.WrapGitError("git diff --cached --name-only failed", result, err)
	}
	return parseNameOnly(result.StdoutString(false)), nil
}

// AddAll stages every change in the working tree, including deletions.
func (c *Client) AddAll(ctx context.Context) error {
	result, err := c.runner.RunLogged(ctx, "add", "-A")
	if err != nil {
		return gitutil.WrapGitError("git add -A failed", result, err)
	}
	return nil
}

func (c *Client) Stage(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	args := append([]string{"--literal-pathspecs", "add", "-A", "--"}, files...)
	result, err := c.runner.RunLogged(ctx, args...)
	if err != nil {
		return gitutil.WrapGitError("git add failed", result, err)
	}
	return nil
}

// Unstage removes files from the index and leaves the working tree alone.
// On an unborn branch there is no HEAD to reset to, so the files are
// dropped from the index instead.
func (c *Client) Unstage(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}

	var args []string
	if c.hasHead(ctx) {
		args = append([]string{"--literal-pathspecs", "reset", "-q", "HEAD", "--"}, files...)
	} else {
		args = append([]string{"--literal-pathspecs", "rm", "--cached", "-r", "-q", "--"}, files...)
	}
	result, err := c.runner.RunLogged(ctx, args...)
	if err != nil {
		return gitutil.WrapGitError("git unstage failed", result, err)
	}
	return nil
}

func (c *Client) Commit(ctx context.Context, message string) error {
	if err := c.checkSafety(); err != nil {
		return err
	}
	args := append([]string{"commit", "-m", message}, c.commitArgs...)
	result, err := c.runner.RunLogged(ctx, args...)
	if err != nil {
		return gitutil.WrapGitError("git commit failed", result, err)
	}
	return nil
}

// UndoLastCommitKeepStaged moves HEAD back one commit and keeps its changes in the index.
func (c *Client) UndoLastCommitKeepStaged(ctx context.Context) error {
	if err := c.checkSafety(); err != nil {
		return err
	}
	result, err := c.runner.RunLogged(ctx, "reset", "--soft", "HEAD~1")
	if err != nil {
		return gitutil.WrapGitError("git reset --soft HEAD~1 failed", result, err)
	}
	return nil
}

func (c *Client) Push(ctx context.Context) error {
	if err := c.checkSafety(); err != nil {
		return err
	}
	result, err := c.runner.RunLogged(ctx, "push")
	if err != nil {
		return gitutil.WrapGitError("git push failed", result, err)
	}
	return nil
}

// PushUpstream pushes branch to origin and sets it as upstream.
func (c *Client) PushUpstream(ctx context.Context, branch string) error {
	if err := c.checkSafety(); err != nil {
		return err
	}
	result, err := c.runner.RunLogged(ctx, "push", "-u", "origin", branch)
	if err != nil {
		return gitutil.WrapGitError("git push -u origin "+branch+" failed", result, err)
	}
	return nil
}

// CreateBranch creates name at HEAD and checks it out.
func (c *Client) CreateBranch(ctx context.Context, name string) error {
	if err := c.checkSafety(); err != nil {
		return err
	}
	result, err := c.runner.RunLogged(ctx, "checkout", "-b", name)
	if err != nil {
		return gitutil.WrapGitError("git checkout -b "+name+" failed", result, err)
	}
	return nil
}

// HasUpstream reports whether the current branch tracks a remote branch.
func (c *Client) HasUpstream(ctx context.Context) bool {
	_, err := c.runner.Run(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	return err == nil
}

// CurrentBranch returns the checked-out branch name, or DetachedHead.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		// Unborn branch: HEAD points at a ref that does not exist yet.
		symbolic, symErr := c.runner.Run(ctx, "symbolic-ref", "--short", "HEAD")
		if symErr == nil {
			return symbolic.StdoutString(true), nil
		}
		return "", gitutil.WrapGitError("failed to get current branch", result, err)
	}
	return result.StdoutString(true), nil
}

func (c *Client) hasHead(ctx context.Context) bool {
	_, err := c.runner.Run(ctx, "rev-parse", "--verify", "-q", "HEAD")
	return err == nil
}

// checkSafety refuses history-changing commands while running under go test
// outside a temporary directory, so tests can never touch a real checkout.
func (c *Client) checkSafety() error {
	if os.Getenv("GO_TEST_ENV") != "1" {
		return nil
	}
	dir := c.runner.Dir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("SAFETY: cannot determine working directory: %w", err)
		}
	}
	if !isTempPath(dir) {
		return fmt.Errorf("SAFETY: refusing to modify repository outside a temp dir during tests: %s", dir)
	}
	return nil
}

func isTempPath(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	tmp := filepath.Clean(os.TempDir())
	return strings.HasPrefix(abs, tmp+string(filepath.Separator)) ||
		strings.Contains(abs, "gsc_git_test")
}

// parseNameOnly splits NUL-terminated name-only output. Paths are taken
// as-is; whitespace inside a name is part of the name.
func parseNameOnly(output string) []string {
	return stringsutil.SplitNonEmpty(output, "\x00")
}
