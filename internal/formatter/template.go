package formatter

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptTemplate is the yaml shape of a custom template file.
type PromptTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// TemplateData is what a prompt template can reference. Scope is empty for
// whole-diff prompts.
type TemplateData struct {
	Role              string
	Scope             string
	Files             string
	Diff              string
	StyleInstructions string
}

var builtinTemplates = map[string]string{
	"default": `You are an experienced {{.Role}}.

{{if .Scope}}Generate a concise commit message for changes in the "{{.Scope}}" module.
The changes affect these files: {{.Files}}{{else}}Generate a concise commit message for the following changes.

Changed Files:
{{.Files}}{{end}}

{{.StyleInstructions}}

Git diff:
{{.Diff}}

Do not add issue numbers like "#123" or "(#123)"; they are added automatically.`,

	"detailed": `As a seasoned {{.Role}}, carefully analyze the following Git changes{{if .Scope}} to the "{{.Scope}}" module{{end}}.

Changed Files:
{{.Files}}

Changed Content:
{{.Diff}}

{{.StyleInstructions}}

Focus on intent: what behavior changed and why, not a line-by-line summary.
The diff may be cut short at the end; describe only what is visible.
Do not include issue numbers, they are added automatically.`,
}

// GetPromptTemplate resolves a builtin template name or a template file path.
// A yaml file with a "template" key is unwrapped; any other file is used verbatim.
func GetPromptTemplate(templateName string) (string, error) {
	if tpl, ok := builtinTemplates[templateName]; ok {
		return tpl, nil
	}

	content, err := os.ReadFile(templateName)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("could not find prompt template: %s", templateName)
		}
		return "", fmt.Errorf("unable to read template file %s: %w", templateName, err)
	}

	var tpl PromptTemplate
	if err := yaml.Unmarshal(content, &tpl); err != nil || tpl.Template == "" {
		return string(content), nil
	}
	return tpl.Template, nil
}

func RenderTemplate(templateContent string, data TemplateData) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("template parsing error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template rendering error: %w", err)
	}
	return buf.String(), nil
}

func GetBuiltinTemplates() map[string]string {
	return builtinTemplates
}
