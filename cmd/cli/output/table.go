package output

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable prints rows as a light-bordered table on stdout.
func RenderTable(headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)

	body := make([]table.Row, len(rows))
	for i, row := range rows {
		body[i] = table.Row(row)
	}
	t.AppendRows(body)

	t.Render()
}
