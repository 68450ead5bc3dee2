package workflow

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/samzong/gsc/internal/commitplan"
	"github.com/samzong/gsc/internal/formatter"
	"github.com/samzong/gsc/internal/ui"
)

type Action int

const (
	ActionCommit Action = iota
	ActionCancel
	ActionRegenerate
)

// PlanChoice is how a multi-scope plan gets committed.
type PlanChoice int

const (
	ChoiceSeparate PlanChoice = iota
	ChoiceMerge
	ChoiceCancel
)

func (c PlanChoice) String() string {
	switch c {
	case ChoiceSeparate:
		return "separate"
	case ChoiceMerge:
		return "merge"
	default:
		return "cancel"
	}
}

var errNotTerminal = errors.New("stdin is not a terminal, use --yes to skip interactive confirmation")

type Prompter interface {
	GetConfirmation(message string, autoYes bool) (Action, string, error)
	ChoosePlan(plan commitplan.Plan) (PlanChoice, error)
}

type InteractivePrompter struct {
	ErrWriter io.Writer
	Stdin     io.Reader

	reader *bufio.Reader
}

func (p *InteractivePrompter) input() (io.Reader, error) {
	stdin := p.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	if f, ok := stdin.(*os.File); ok && !ui.IsTerminal(f) {
		return nil, errNotTerminal
	}
	return stdin, nil
}

func (p *InteractivePrompter) readLine(stdin io.Reader) (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(stdin)
	}
	response, err := p.reader.ReadString('\n')
	if err != nil && (response == "" || !errors.Is(err, io.EOF)) {
		return "", fmt.Errorf("failed to read user input: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(response)), nil
}

func (p *InteractivePrompter) GetConfirmation(message string, autoYes bool) (Action, string, error) {
	if autoYes {
		fmt.Fprintln(p.ErrWriter, "Auto-confirming commit message (-y flag is set)")
		return ActionCommit, "", nil
	}

	stdin, err := p.input()
	if err != nil {
		return ActionCancel, "", err
	}

	fmt.Fprint(p.ErrWriter,
		"\nDo you want to proceed with this commit message? [y/n/r/e] (y/n/r=regenerate/e=edit): ")
	response, err := p.readLine(stdin)
	if err != nil {
		return ActionCancel, "", err
	}

	switch response {
	case "n":
		return ActionCancel, "", nil
	case "r":
		return ActionRegenerate, "", nil
	case "e":
		editedMessage, err := p.openEditor(message)
		return ActionCommit, editedMessage, err
	case "y", "":
		if response == "" {
			fmt.Fprintln(p.ErrWriter, "Using default option (yes)")
		}
		return ActionCommit, "", nil
	default:
		fmt.Fprintln(p.ErrWriter, "Invalid input. Commit cancelled")
		return ActionCancel, "", nil
	}
}

// ChoosePlan asks how to commit a plan with several scopes. A terminal gets
// a select list; any other reader gets a line prompt that repeats until it
// reads a valid answer.
func (p *InteractivePrompter) ChoosePlan(plan commitplan.Plan) (PlanChoice, error) {
	stdin, err := p.input()
	if err != nil {
		return ChoiceCancel, err
	}
	if f, ok := stdin.(*os.File); ok && ui.IsTerminal(f) {
		return choosePlanTUI(len(plan))
	}

	for {
		fmt.Fprint(p.ErrWriter, "\n[a]ll as separate commits / [m]erge into one / [c]ancel (default a): ")
		response, err := p.readLine(stdin)
		if err != nil {
			return ChoiceCancel, err
		}
		switch response {
		case "a", "":
			return ChoiceSeparate, nil
		case "m":
			return ChoiceMerge, nil
		case "c":
			return ChoiceCancel, nil
		default:
			fmt.Fprintln(p.ErrWriter, "Invalid option. Enter a, m, or c.")
		}
	}
}

func choosePlanTUI(n int) (PlanChoice, error) {
	choice := ChoiceSeparate
	err := huh.NewSelect[PlanChoice]().
		Title("How should these changes be committed?").
		Options(
			huh.NewOption(fmt.Sprintf("All as %d separate commits", n), ChoiceSeparate),
			huh.NewOption("Merge into one commit", ChoiceMerge),
			huh.NewOption("Cancel", ChoiceCancel),
		).
		Value(&choice).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ChoiceCancel, nil
	}
	if err != nil {
		return ChoiceCancel, fmt.Errorf("selection failed: %w", err)
	}
	return choice, nil
}

func (p *InteractivePrompter) openEditor(message string) (string, error) {
	fmt.Fprintln(p.ErrWriter, "Opening editor to modify commit message...")

	tmpFile, err := os.CreateTemp("", "gsc-commit-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpFileName := tmpFile.Name()
	defer os.Remove(tmpFileName)

	if _, err := tmpFile.WriteString(message); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write to temporary file: %w", err)
	}
	tmpFile.Close()

	cmd := editorCommand(tmpFileName)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	editedBytes, err := os.ReadFile(tmpFileName)
	if err != nil {
		return "", fmt.Errorf("failed to read edited message: %w", err)
	}

	editedMessage := formatter.FormatCommitMessage(string(editedBytes))
	if editedMessage != "" {
		fmt.Fprintln(p.ErrWriter, "Using edited message:")
		fmt.Fprintln(p.ErrWriter, editedMessage)
		return editedMessage, nil
	}

	fmt.Fprintln(p.ErrWriter, "Empty message provided, using original message")
	return "", nil
}

// editorCommand splits $EDITOR so values like "code --wait" work.
func editorCommand(file string) *exec.Cmd {
	parts := strings.Fields(getEditor())
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	args := append(parts[1:], file)
	return exec.Command(parts[0], args...)
}

func getEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	return "vi"
}
