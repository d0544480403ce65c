package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/output"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to temporary files.
const multipartMemory = 8 << 20

// Names offered to the browser for downloaded workbooks.
const (
	CleanFile = "clean_data.xlsx"
	BadFile   = "bad_data.xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// requestError is an error whose message is safe to show to the client.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

// SanitizeResponse is the JSON body returned by the sanitize endpoint.
type SanitizeResponse struct {
	ID        string         `json:"id"`
	Summary   models.Summary `json:"summary"`
	Clean     *models.Table  `json:"clean"`
	Bad       *models.Table  `json:"bad"`
	Downloads Downloads      `json:"downloads"`
}

// Downloads holds the download URLs of a result's workbooks.
type Downloads struct {
	Clean string `json:"clean"`
	Bad   string `json:"bad"`
}

func downloadsFor(id string) Downloads {
	return Downloads{
		Clean: fmt.Sprintf("/api/v1/results/%s/clean.xlsx", id),
		Bad:   fmt.Sprintf("/api/v1/results/%s/bad.xlsx", id),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSanitize runs a sanitization from a multipart upload and answers
// with JSON.
func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	id, result, err := s.sanitizeUpload(w, r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SanitizeResponse{
		ID:        id,
		Summary:   result.Summary(),
		Clean:     result.Clean,
		Bad:       result.Bad,
		Downloads: downloadsFor(id),
	})
}

// handleSanitizeForm runs a sanitization submitted from the upload page and
// redirects to the result page.
func (s *Server) handleSanitizeForm(w http.ResponseWriter, r *http.Request) {
	id, _, err := s.sanitizeUpload(w, r)
	if err != nil {
		var reqErr *requestError
		if !errors.As(err, &reqErr) {
			s.logFailure(r, err)
			reqErr = &requestError{status: http.StatusInternalServerError, msg: "internal error"}
		}
		s.render(w, reqErr.status, "index", indexPage{Error: reqErr.msg})
		return
	}

	http.Redirect(w, r, "/results/"+id, http.StatusSeeOther)
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}

	writeJSON(w, http.StatusOK, SanitizeResponse{
		ID:        id,
		Summary:   result.Summary(),
		Clean:     result.Clean,
		Bad:       result.Bad,
		Downloads: downloadsFor(id),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file := chi.URLParam(r, "file")

	result, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}

	var (
		table *models.Table
		name  string
	)
	switch file {
	case "clean.xlsx":
		table, name = result.Clean, CleanFile
	case "bad.xlsx":
		table, name = result.Bad, BadFile
	default:
		writeError(w, http.StatusNotFound, "unknown file")
		return
	}

	var buf bytes.Buffer
	if err := output.WriteXLSX(&buf, table, ""); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		s.requestLog(r).Error("failed to write workbook", "file", file, "error", err)
	}
}

// sanitizeUpload reads the data and ranges parts of a multipart request,
// runs the sanitization and stores the result.
func (s *Server) sanitizeUpload(w http.ResponseWriter, r *http.Request) (string, *models.Result, error) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		return "", nil, tooLargeError(s.cfg.MaxUploadBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, tooLargeError(tooLarge.Limit)
		}
		return "", nil, &requestError{status: http.StatusBadRequest, msg: "invalid multipart form"}
	}
	defer r.MultipartForm.RemoveAll()

	data, err := formFile(r, "data")
	if err != nil {
		return "", nil, err
	}
	defer data.Close()

	ranges, err := formFile(r, "ranges")
	if err != nil {
		return "", nil, err
	}
	defer ranges.Close()

	opts := exsanitize.Options{
		DataSheet:   r.FormValue("data_sheet"),
		RangesSheet: r.FormValue("ranges_sheet"),
		Logger:      s.requestLog(r),
	}

	result, err := exsanitize.SanitizeReaders(data, ranges, opts)
	if err != nil {
		var readErr *exsanitize.ReadError
		if errors.Is(err, exsanitize.ErrSchema) || errors.As(err, &readErr) {
			return "", nil, &requestError{status: http.StatusBadRequest, msg: err.Error()}
		}
		return "", nil, err
	}

	return s.store.Put(result), result, nil
}

func tooLargeError(limit int64) error {
	return &requestError{
		status: http.StatusRequestEntityTooLarge,
		msg:    fmt.Sprintf("upload exceeds %d bytes", limit),
	}
}

func formFile(r *http.Request, field string) (multipart.File, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, &requestError{
			status: http.StatusBadRequest,
			msg:    fmt.Sprintf("missing %s file", field),
		}
	}
	return f, nil
}

// writeFailure answers with the message of a requestError, or a generic 500
// for anything else.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeError(w, reqErr.status, reqErr.msg)
		return
	}
	s.logFailure(r, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) logFailure(r *http.Request, err error) {
	s.requestLog(r).Error("request failed", "error", err)
}

func (s *Server) requestLog(r *http.Request) *slog.Logger {
	return s.logger.With("request_id", middleware.GetReqID(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
