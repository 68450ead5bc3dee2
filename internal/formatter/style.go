package formatter

import "github.com/samzong/gsc/internal/config"

var styleInstructions = map[string]string{
	config.StyleConventional: `Follow the Conventional Commits format:

type(scope): short summary

Optional body if necessary.

Types: feat, fix, refactor, docs, style, test, chore, perf, ci, build.`,

	config.StyleSimple: `Write a short, single-line commit message summarizing the change. No prefix, no body.`,

	config.StyleDetailed: `Write a detailed commit message with:

- A short summary line (max 72 chars)
- A blank line
- A body explaining what changed and why.`,
}

// StyleInstructions returns the instructions for style, falling back to conventional.
func StyleInstructions(style string) string {
	if s, ok := styleInstructions[style]; ok {
		return s
	}
	return styleInstructions[config.StyleConventional]
}
