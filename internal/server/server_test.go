package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/exsanitize-go/internal/config"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
	"github.com/xuri/excelize/v2"
)

type apiResponse struct {
	ID        string           `json:"id"`
	Summary   models.Summary   `json:"summary"`
	Clean     []map[string]any `json:"clean"`
	Bad       []map[string]any `json:"bad"`
	Downloads Downloads        `json:"downloads"`
	Error     string           `json:"error"`
}

func newTestServer() *Server {
	return New(config.ServerConfig{
		Addr:           "127.0.0.1:0",
		MaxUploadBytes: 1 << 20,
		MaxResults:     10,
		ResultTTL:      time.Hour,
	}, slog.New(slog.DiscardHandler))
}

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// uploadRequest builds a multipart POST with the given files and fields.
func uploadRequest(t *testing.T, target string, files map[string][]byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile(name, name+".xlsx")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sampleFiles(t *testing.T) map[string][]byte {
	return map[string][]byte{
		"data": workbookBytes(t, [][]interface{}{
			{"id", "temp"},
			{1, 50},
			{2, 150},
			{3, "hot"},
		}),
		"ranges": workbookBytes(t, [][]interface{}{
			{"parameter", "min", "max"},
			{"temp", 0, 100},
		}),
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestServer().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSanitizeAPI(t *testing.T) {
	h := newTestServer().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/v1/sanitize", sampleFiles(t), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode(t, rec)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, models.Summary{Total: 3, Clean: 1, Bad: 2, Constraints: 1}, resp.Summary)

	require.Len(t, resp.Clean, 1)
	assert.Equal(t, float64(50), resp.Clean[0]["temp"])

	require.Len(t, resp.Bad, 2)
	assert.Equal(t, "temp: 150 outside [0.0, 100.0]", resp.Bad[0]["issues"])
	assert.Equal(t, "temp: non-numeric", resp.Bad[1]["issues"])

	assert.Equal(t, "/api/v1/results/"+resp.ID+"/clean.xlsx", resp.Downloads.Clean)
	assert.Equal(t, "/api/v1/results/"+resp.ID+"/bad.xlsx", resp.Downloads.Bad)

	// the stored result is served again by id
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/results/"+resp.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resp.Summary, decode(t, rec).Summary)
}

func TestSanitizeAPI_Errors(t *testing.T) {
	files := sampleFiles(t)

	tests := []struct {
		name     string
		files    map[string][]byte
		fields   map[string]string
		status   int
		contains string
	}{
		{
			name:     "missing ranges file",
			files:    map[string][]byte{"data": files["data"]},
			status:   http.StatusBadRequest,
			contains: "missing ranges file",
		},
		{
			name: "schema error",
			files: map[string][]byte{
				"data":   files["data"],
				"ranges": workbookBytes(t, [][]interface{}{{"parameter", "min"}, {"temp", 0}}),
			},
			status:   http.StatusBadRequest,
			contains: "range table missing required columns: [max]",
		},
		{
			name:     "not a workbook",
			files:    map[string][]byte{"data": []byte("plain text"), "ranges": files["ranges"]},
			status:   http.StatusBadRequest,
			contains: "invalid xlsx format",
		},
		{
			name:     "unknown sheet",
			files:    files,
			fields:   map[string]string{"data_sheet": "Nope"},
			status:   http.StatusBadRequest,
			contains: "Nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer().Routes()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, "/api/v1/sanitize", tt.files, tt.fields))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decode(t, rec).Error, tt.contains)
		})
	}
}

func TestSanitizeAPI_TooLarge(t *testing.T) {
	s := newTestServer()
	s.cfg.MaxUploadBytes = 512
	h := s.Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/v1/sanitize", sampleFiles(t), nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decode(t, rec).Error, "upload exceeds 512 bytes")
}

func TestDownload(t *testing.T) {
	h := newTestServer().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/v1/sanitize", sampleFiles(t), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.Downloads.Bad, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bad_data.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "temp", "issues"},
		{"2", "150", "temp: 150 outside [0.0, 100.0]"},
		{"3", "hot", "temp: non-numeric"},
	}, rows)
}

func TestDownload_NotFound(t *testing.T) {
	h := newTestServer().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/v1/sanitize", sampleFiles(t), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode(t, rec).ID

	for _, target := range []string{
		"/api/v1/results/unknown/clean.xlsx",
		"/api/v1/results/" + id + "/other.xlsx",
		"/api/v1/results/unknown",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestPages(t *testing.T) {
	h := newTestServer().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `name="ranges"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/sanitize", sampleFiles(t), nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/results/"), location)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, location, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	page, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "3 rows checked against 1 constraints: 1 clean, 2 bad.")
	assert.Contains(t, string(page), "temp: 150 outside [0.0, 100.0]")
	assert.Contains(t, string(page), "<td>100.0</td>")
	assert.Contains(t, string(page), "/bad.xlsx")

	// the uploaded rows come first, then the ranges
	html := string(page)
	dataAt := strings.Index(html, "<h2>Uploaded Data</h2>")
	require.GreaterOrEqual(t, dataAt, 0)
	assert.Less(t, dataAt, strings.Index(html, "<h2>Parameter Ranges</h2>"))
	assert.Equal(t, 2, strings.Count(html, "<td>50</td>"), "row 1 shows in the uploaded and the clean table")
}

func TestPages_FormError(t *testing.T) {
	h := newTestServer().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/sanitize", map[string][]byte{"ranges": sampleFiles(t)["ranges"]}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing data file")
	assert.Contains(t, rec.Body.String(), "<form")
}
