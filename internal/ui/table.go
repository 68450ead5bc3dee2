package ui

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/samzong/gsc/internal/commitplan"
)

const planMessageWidth = 60

// RenderPlan prints one row per plan entry: index, scope, files, message.
func RenderPlan(w io.Writer, plan commitplan.Plan) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "SCOPE", "FILES", "MESSAGE"})
	for i, entry := range plan {
		tw.AppendRow(table.Row{
			i + 1,
			entry.Group.Scope,
			strings.Join(entry.Group.Files, "\n"),
			entry.Message,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, WidthMax: planMessageWidth},
	})
	tw.SetStyle(table.StyleLight)
	tw.Render()
}
