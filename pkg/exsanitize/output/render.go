package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

// RenderTable prints t as a boxed terminal table under title. A positive
// limit caps the number of rows shown; the footer always reports the full
// row count.
func RenderTable(w io.Writer, title string, t *models.Table, limit int) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if t == nil || t.Len() == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(t.Columns))
	for i, col := range t.Columns {
		headerRow[i] = col
	}
	tw.AppendHeader(headerRow)

	shown := t.Len()
	if limit > 0 && limit < shown {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		values := t.Row(i)
		row := make(table.Row, len(values))
		for j, v := range values {
			row[j] = formatValue(v)
		}
		tw.AppendRow(row)
	}

	tw.Render()
	if shown < t.Len() {
		_, err := fmt.Fprintf(w, "(%d of %d rows)\n", shown, t.Len())
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", t.Len())
	return err
}

// RenderBounds prints the normalized constraints.
func RenderBounds(w io.Writer, title string, bounds *models.BoundMap) error {
	t := models.NewTable("parameter", "min", "max")
	for _, e := range bounds.Entries() {
		t.AppendRow(models.Text(e.Parameter), models.Float(e.Min), models.Float(e.Max))
	}
	return RenderTable(w, title, t, 0)
}

func formatValue(v models.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return v.String()
}
