package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// Printer writes status lines for humans. Colors are dropped when the
// process output is not a terminal or NO_COLOR is set.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Success(format string, args ...any) {
	successColor.Fprintln(p.w, fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	errorColor.Fprintln(p.w, fmt.Sprintf(format, args...))
}

func (p *Printer) Warning(format string, args ...any) {
	warningColor.Fprintln(p.w, fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...any) {
	infoColor.Fprintln(p.w, fmt.Sprintf(format, args...))
}
