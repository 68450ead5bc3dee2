// Package gitutil holds helpers shared by the git gateway.
package gitutil

import (
	"fmt"
	"strings"

	"github.com/samzong/gsc/internal/gitcmd"
)

// WrapGitError builds an error that prefers git's own stderr text when present.
// Hint lines ("hint: ...") are dropped so the message stays on the failure itself.
func WrapGitError(action string, result gitcmd.Result, err error) error {
	if errMsg := stderrSummary(result.Stderr); errMsg != "" {
		return fmt.Errorf("%s: %s: %w", action, errMsg, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func stderrSummary(stderr []byte) string {
	var lines []string
	for _, line := range strings.Split(string(stderr), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "hint:") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "; ")
}
