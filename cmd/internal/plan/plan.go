package plan

import (
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/skiffhq/skiff/core/pipeline"
)

const timeRounding = 10 * time.Millisecond

// Render prints the ordered execution plan as a table.
func Render(w io.Writer, rows []pipeline.PlanRow) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetHeader([]string{"Stage", "Kind", "Needs", "Detail"})
	for _, row := range rows {
		table.Append([]string{
			row.Stage,
			string(row.Kind),
			strings.Join(row.Needs, ", "),
			row.Detail,
		})
	}
	table.Render()
}

// RenderResult prints the per-stage outcome of a finished run.
func RenderResult(w io.Writer, result *pipeline.RunResult) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetHeader([]string{"Stage", "Status", "Duration"})
	for _, stage := range result.Stages {
		table.Append([]string{
			stage.Name,
			string(stage.Status),
			stage.Duration.Round(timeRounding).String(),
		})
	}
	table.Render()
}
