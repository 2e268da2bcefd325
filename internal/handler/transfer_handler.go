package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"roster/internal/service"

	"go.uber.org/zap"
)

type fileReport struct {
	File   string                `json:"file"`
	Report *service.ImportReport `json:"report,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// Import loads one or more CSV files posted as multipart field "files".
// Browsers get the page back with a summary notice; API clients get a JSON
// report per file.
func (h *RosterHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Bad multipart request", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.page.beginRequest(r.URL.Path, false)

	status := http.StatusOK
	reports := make([]fileReport, 0, len(files))
	for _, fh := range files {
		fr := fileReport{File: fh.Filename}
		file, err := fh.Open()
		if err != nil {
			h.logger.Warn("error opening upload", zap.String("file", fh.Filename), zap.Error(err))
			fr.Error = "could not open file"
			status = http.StatusBadRequest
			reports = append(reports, fr)
			continue
		}

		report, err := h.ctrl.Import(r.Context(), file)
		file.Close()
		switch {
		case err == nil:
			fr.Report = &report
		case service.IsValidationError(err):
			fr.Error = err.Error()
			if status == http.StatusOK {
				status = http.StatusUnprocessableEntity
			}
		default:
			fr.Report = &report
			fr.Error = err.Error()
			status = http.StatusInternalServerError
		}
		reports = append(reports, fr)
	}

	defer h.page.endRequest()
	if !wantsJSON(r) {
		h.writePage(w, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := map[string]interface{}{
		"files": reports,
		"total": h.ctrl.Store().Len(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Warn("error encoding response", zap.Error(err))
	}
}

// Export downloads the whole roster as CSV.
func (h *RosterHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	h.mu.Lock()
	err := h.ctrl.Export(&buf)
	h.mu.Unlock()
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		http.Error(w, "Failed to export students", http.StatusInternalServerError)
		return
	}

	name := "students-" + time.Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(buf.Bytes())
}
