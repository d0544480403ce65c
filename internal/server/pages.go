package server

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

var pageTemplates = template.Must(template.New("layout").Parse(`{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.5rem; }
.error { color: #b00020; }
</style>
</head>
<body>
{{end}}
{{define "table"}}<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
<p>({{len .Rows}} rows)</p>
{{end}}
{{define "index"}}{{template "head" "Data Sanitizer"}}<h1>Data Sanitizer</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/sanitize" enctype="multipart/form-data">
<p><label>Data workbook <input type="file" name="data" accept=".xlsx" required></label></p>
<p><label>Data sheet <input type="text" name="data_sheet" placeholder="first sheet"></label></p>
<p><label>Ranges workbook <input type="file" name="ranges" accept=".xlsx" required></label></p>
<p><label>Ranges sheet <input type="text" name="ranges_sheet" placeholder="first sheet"></label></p>
<p><button type="submit">Sanitize</button></p>
</form>
</body>
</html>
{{end}}
{{define "result"}}{{template "head" "Sanitization Result"}}<h1>Sanitization Result</h1>
<p>{{.Summary.Total}} rows checked against {{.Summary.Constraints}} constraints: {{.Summary.Clean}} clean, {{.Summary.Bad}} bad.</p>
<h2>Uploaded Data</h2>
{{template "table" .Data}}
<h2>Parameter Ranges</h2>
{{template "table" .Bounds}}
<h2>Clean Data</h2>
{{template "table" .Clean}}
<p><a href="{{.Downloads.Clean}}">Download clean data</a></p>
<h2>Bad Data</h2>
{{template "table" .Bad}}
<p><a href="{{.Downloads.Bad}}">Download bad data</a></p>
<p><a href="/">Sanitize more files</a></p>
</body>
</html>
{{end}}`))

type indexPage struct {
	Error string
}

type resultPage struct {
	Summary   models.Summary
	Data      htmlTable
	Bounds    htmlTable
	Clean     htmlTable
	Bad       htmlTable
	Downloads Downloads
}

type htmlTable struct {
	Columns []string
	Rows    [][]string
}

func newHTMLTable(t *models.Table) htmlTable {
	if t == nil {
		return htmlTable{}
	}
	ht := htmlTable{Columns: t.Columns, Rows: make([][]string, 0, t.Len())}
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		ht.Rows = append(ht.Rows, cells)
	}
	return ht
}

func boundsHTMLTable(m *models.BoundMap) htmlTable {
	ht := htmlTable{Columns: []string{"parameter", "min", "max"}}
	for _, e := range m.Entries() {
		ht.Rows = append(ht.Rows, []string{
			e.Parameter,
			models.FormatFloat(e.Min),
			models.FormatFloat(e.Max),
		})
	}
	return ht
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "index", indexPage{})
}

func (s *Server) handleResultPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, ok := s.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.render(w, http.StatusOK, "result", resultPage{
		Summary:   result.Summary(),
		Data:      newHTMLTable(result.Data),
		Bounds:    boundsHTMLTable(result.Bounds),
		Clean:     newHTMLTable(result.Clean),
		Bad:       newHTMLTable(result.Bad),
		Downloads: downloadsFor(id),
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("failed to render page", "page", name, "error", err)
	}
}
