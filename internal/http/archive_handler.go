package httpapi

import (
	"net/http"
	"strconv"

	"github.com/rekk2/event-registration/internal/service"

	"go.uber.org/zap"
)

type ArchiveHandler struct {
	archives service.ArchiveService
	logger   *zap.Logger
}

func NewArchiveHandler(archives service.ArchiveService, logger *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{archives: archives, logger: logger}
}

// Archive POST /archive {eventName}. With ?clear=true the active set is cleared in the
// same transaction.
func (h *ArchiveHandler) Archive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventName string `json:"eventName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if clear, _ := strconv.ParseBool(r.URL.Query().Get("clear")); clear {
		res, err := h.archives.ArchiveAndClear(r.Context(), req.EventName)
		if err != nil {
			writeError(w, r, h.logger, "ArchiveAndClear", err)
			return
		}
		writeJSON(w, http.StatusOK, OkMessage("Event data archived and cleared", res))
		return
	}

	summary, err := h.archives.Archive(r.Context(), req.EventName)
	if err != nil {
		writeError(w, r, h.logger, "Archive", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Event data archived", summary))
}

// ListArchives GET /archives
func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	list, err := h.archives.ListArchives(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "ListArchives", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// GetArchive GET /archive/{id}
func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	archive, err := h.archives.GetArchive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, "GetArchive", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(archive))
}

// DeleteArchive DELETE /archive/{id}
func (h *ArchiveHandler) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	if err := h.archives.DeleteArchive(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, "DeleteArchive", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("Archived data deleted", nil))
}
