// Package formatter builds generation prompts and cleans up generated messages.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samzong/gsc/internal/config"
)

var (
	fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n(.*?)\\n?```$")
	issuePattern = regexp.MustCompile(`\s*\(#\d+\)\s*$`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// BuildPrompt renders the whole-diff prompt.
func BuildPrompt(cfg *config.Config, changedFiles []string, diff string) string {
	return buildPrompt(cfg, TemplateData{
		Files: strings.Join(changedFiles, "\n"),
		Diff:  diff,
	})
}

// BuildScopedPrompt renders the prompt for one scope of a split diff.
func BuildScopedPrompt(cfg *config.Config, scope string, files []string, diff string) string {
	return buildPrompt(cfg, TemplateData{
		Scope: scope,
		Files: strings.Join(files, ", "),
		Diff:  diff,
	})
}

func buildPrompt(cfg *config.Config, data TemplateData) string {
	if cfg == nil {
		cfg = config.MustGetConfig()
	}
	data.Role = cfg.Role
	data.StyleInstructions = StyleInstructions(cfg.Style)

	templateName := cfg.PromptTemplate
	if templateName == "" {
		templateName = config.DefaultPromptTemplate
	}

	templateContent, err := GetPromptTemplate(templateName)
	if err != nil {
		fmt.Printf("Warning: %v, using default template\n", err)
		templateContent = builtinTemplates[config.DefaultPromptTemplate]
	}

	prompt, err := RenderTemplate(templateContent, data)
	if err != nil {
		fmt.Printf("Warning: %v, using simple format\n", err)
		prompt = buildSimplePrompt(data)
	}
	return prompt
}

func buildSimplePrompt(data TemplateData) string {
	var b strings.Builder
	if data.Scope != "" {
		fmt.Fprintf(&b, "Summarize the following git changes to the %q module as a commit message.\n\n", data.Scope)
	} else {
		b.WriteString("Summarize the following git changes as a commit message.\n\n")
	}
	fmt.Fprintf(&b, "Files:\n%s\n\n", data.Files)
	fmt.Fprintf(&b, "Diff:\n%s\n\n", data.Diff)
	b.WriteString(data.StyleInstructions)
	return b.String()
}

// FormatCommitMessage strips wrapping the model sometimes adds (code fences,
// quotes, trailing issue references) and normalizes blank lines.
func FormatCommitMessage(message string) string {
	message = strings.TrimSpace(strings.ReplaceAll(message, "\r\n", "\n"))
	if m := fencePattern.FindStringSubmatch(message); m != nil {
		message = strings.TrimSpace(m[1])
	}
	if len(message) >= 2 && (message[0] == '"' && message[len(message)-1] == '"' ||
		message[0] == '`' && message[len(message)-1] == '`') {
		message = strings.TrimSpace(message[1 : len(message)-1])
	}

	lines := strings.Split(message, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	if len(lines) > 0 {
		lines[0] = issuePattern.ReplaceAllString(lines[0], "")
	}
	message = strings.Join(lines, "\n")
	return blankRuns.ReplaceAllString(message, "\n\n")
}

// AppendIssue adds "(#num)" to the subject line unless it is already present.
func AppendIssue(message, issueNum string) string {
	if issueNum == "" {
		return message
	}
	tag := fmt.Sprintf("(#%s)", issueNum)
	subject, body, hasBody := strings.Cut(message, "\n")
	if strings.Contains(subject, tag) {
		return message
	}
	subject = subject + " " + tag
	if hasBody {
		return subject + "\n" + body
	}
	return subject
}

// TruncateDiff cuts diff to at most maxChars bytes without splitting a UTF-8
// sequence. The cut may land inside a hunk; callers pass the result on as is.
func TruncateDiff(diff string, maxChars int) (string, bool) {
	if maxChars <= 0 || len(diff) <= maxChars {
		return diff, false
	}
	return truncateToValidUTF8(diff, maxChars), true
}

func truncateToValidUTF8(input string, maxBytes int) string {
	if len(input) <= maxBytes {
		return input
	}

	end := maxBytes
	for end > 0 && !utf8.ValidString(input[:end]) {
		end--
	}
	return input[:end]
}
