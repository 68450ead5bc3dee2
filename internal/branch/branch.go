// Package branch turns free-form descriptions and model replies into
// conventional branch names such as "fix/login-timeout".
package branch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samzong/gsc/internal/stringsutil"
)

// MaxSlugLength bounds the part after the prefix.
const MaxSlugLength = 45

const defaultPrefix = "chore"

var (
	specialCharsRegex    = regexp.MustCompile(`[^a-zA-Z0-9\s\-]+`)
	separatorRegex       = regexp.MustCompile(`[_./]+`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
	multipleHyphensRegex = regexp.MustCompile(`-+`)
)

// Prefixes lists the accepted branch prefixes.
var Prefixes = []string{"feat", "fix", "refactor", "docs", "chore", "test", "perf", "ci"}

var prefixAliases = map[string]string{
	"feature": "feat",
	"bugfix":  "fix",
	"hotfix":  "fix",
	"doc":     "docs",
	"tests":   "test",
}

// Keyword rules are checked in order; the first hit wins.
var prefixKeywords = []struct {
	prefix   string
	keywords []string
}{
	{"fix", []string{"fix", "resolve", "correct", "repair", "patch", "bug"}},
	{"docs", []string{"document", "readme", "guide", "manual", "docs"}},
	{"test", []string{"test"}},
	{"refactor", []string{"refactor", "cleanup", "clean up", "restructure"}},
	{"perf", []string{"performance", "speed up", "optimize", "faster"}},
	{"feat", []string{"add", "create", "implement", "new", "support", "feature"}},
}

const promptTemplate = `Generate a git branch name for the work described below.

Rules:
- Start with one of these prefixes followed by a slash: %s
- Use lowercase letters, digits and hyphens after the prefix
- Keep it to 2-5 words after the prefix, separated by hyphens
- No trailing hyphen

Reply with only the branch name.

Description: %s`

// Prompt renders the model prompt for description.
func Prompt(description string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(Prefixes, "/, ")+"/", strings.TrimSpace(description))
}

// GenerateName derives a branch name from description with keyword-based
// prefix detection. It needs no model and is used when a reply is unusable.
func GenerateName(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}

	cleaned := sanitizeDescription(description)
	if cleaned == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", detectPrefix(description), limitLength(cleaned, MaxSlugLength))
}

// Normalize cleans a model reply into a branch name. Unknown prefixes are
// replaced by one detected from the reply's words. An empty string means
// nothing usable was left.
func Normalize(reply string) string {
	line := stringsutil.FirstLine(reply)
	if i := strings.LastIndex(line, ": "); i >= 0 {
		line = line[i+2:]
	}
	line = strings.Trim(line, "`'\" ")
	if line == "" {
		return ""
	}

	prefix, rest, found := strings.Cut(line, "/")
	if known, ok := knownPrefix(prefix); found && ok {
		slug := sanitizeDescription(separatorRegex.ReplaceAllString(rest, " "))
		if slug == "" {
			return ""
		}
		return known + "/" + limitLength(slug, MaxSlugLength)
	}

	words := separatorRegex.ReplaceAllString(line, " ")
	slug := sanitizeDescription(words)
	if slug == "" {
		return ""
	}
	return detectPrefix(words) + "/" + limitLength(slug, MaxSlugLength)
}

func knownPrefix(p string) (string, bool) {
	p = strings.ToLower(strings.TrimSpace(p))
	for _, known := range Prefixes {
		if p == known {
			return known, true
		}
	}
	alias, ok := prefixAliases[p]
	return alias, ok
}

func detectPrefix(description string) string {
	lowerDesc := strings.ToLower(description)
	for _, rule := range prefixKeywords {
		if containsAnyKeyword(lowerDesc, rule.keywords) {
			return rule.prefix
		}
	}
	return defaultPrefix
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// sanitizeDescription keeps ASCII letters, digits and hyphens, lowercases,
// and joins words with single hyphens.
func sanitizeDescription(description string) string {
	cleaned := specialCharsRegex.ReplaceAllString(description, "")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))
	cleaned = multipleSpacesRegex.ReplaceAllString(cleaned, "-")
	cleaned = multipleHyphensRegex.ReplaceAllString(cleaned, "-")
	return strings.Trim(cleaned, "-")
}

func limitLength(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return strings.Trim(text[:maxLength], "-")
}
