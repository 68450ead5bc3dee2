//go:build !prod

package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CreateSafeTempRepo creates an initialized git repository in a fresh temp
// directory and returns a Client bound to it. The directory is removed when
// the test ends.
func CreateSafeTempRepo(t *testing.T) (string, *Client) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	tempDir, err := os.MkdirTemp("", "gsc_git_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.RemoveAll(tempDir); err != nil {
			t.Errorf("Warning: Failed to remove temp directory: %v", err)
		}
	})

	RunGit(t, tempDir, "init", "-q", "-b", "main")
	RunGit(t, tempDir, "config", "user.name", "Test")
	RunGit(t, tempDir, "config", "user.email", "test@test.com")
	RunGit(t, tempDir, "config", "commit.gpgsign", "false")

	return tempDir, NewClient(Options{Dir: tempDir})
}

// RunGit runs a git command in dir and fails the test on error.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteFile writes content to a path relative to dir, creating parents.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// AssertNotInRealRepo ensures the test is not running inside this project's checkout.
func AssertNotInRealRepo(t *testing.T, dir string) {
	t.Helper()

	if !isTempPath(dir) {
		t.Fatal("SAFETY: Test is running outside a temporary directory: " + dir)
	}
}
