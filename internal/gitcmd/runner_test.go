package gitcmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultStrings(t *testing.T) {
	r := Result{Stdout: []byte("  out\n"), Stderr: []byte("\terr \n")}

	assert.Equal(t, "out", r.StdoutString(true))
	assert.Equal(t, "  out\n", r.StdoutString(false))
	assert.Equal(t, "err", r.StderrString(true))
	assert.Equal(t, "\terr \n", r.StderrString(false))
}

func TestRunnerLog(t *testing.T) {
	var buf bytes.Buffer

	Runner{Verbose: false, Logger: &buf}.log([]string{"status"})
	assert.Empty(t, buf.String())

	Runner{Verbose: true, Logger: &buf}.log([]string{"commit", "-m", "msg"})
	assert.Equal(t, "Running: git commit -m msg\n", buf.String())
}

func TestRunnerCommand(t *testing.T) {
	r := Runner{Dir: "/tmp/repo", Env: []string{"GIT_AUTHOR_NAME=test"}}
	cmd := r.command(t.Context(), "status", "--short")

	assert.Equal(t, "/tmp/repo", cmd.Dir)
	assert.Equal(t, []string{"git", "status", "--short"}, cmd.Args)
	assert.Contains(t, cmd.Env, "GIT_AUTHOR_NAME=test")
}
