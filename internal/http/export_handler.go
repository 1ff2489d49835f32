package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rekk2/event-registration/internal/service"

	"go.uber.org/zap"
)

type ExportHandler struct {
	export service.ExportService
	logger *zap.Logger
}

func NewExportHandler(export service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{export: export, logger: logger}
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", service.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ExportActive GET /export
func (h *ExportHandler) ExportActive(w http.ResponseWriter, r *http.Request) {
	data, err := h.export.ExportActive(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "ExportActive", err)
		return
	}
	writeXLSX(w, service.ActiveExportFilename, data)
}

// ExportArchive GET /export-archive/{id}
func (h *ExportHandler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.export.ExportArchive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, "ExportArchive", err)
		return
	}
	writeXLSX(w, filename, data)
}
