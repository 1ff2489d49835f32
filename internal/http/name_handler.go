package httpapi

import (
	"net/http"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/service"

	"go.uber.org/zap"
)

// NameHandler registration, active set and search endpoints.
type NameHandler struct {
	registration service.RegistrationService
	query        service.QueryService
	logger       *zap.Logger
}

func NewNameHandler(registration service.RegistrationService, query service.QueryService, logger *zap.Logger) *NameHandler {
	return &NameHandler{registration: registration, query: query, logger: logger}
}

type registerRequest struct {
	Door string `json:"door"`
	Name string `json:"name"`
}

// checkDoor rejects a door-user acting on a door other than the one assigned to them.
func checkDoor(r *http.Request, door string) error {
	user := UserFromContext(r.Context())
	if user.CanUseDoor(door) {
		return nil
	}
	return &domain.AuthorizationError{Required: domain.RoleAdmin, Actual: user.Role, Door: door}
}

// Register POST /register {door, name}; answers with the plain-text confirmation the
// check-in pages display.
func (h *NameHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := checkDoor(r, req.Door); err != nil {
		writeError(w, r, h.logger, "Register", err)
		return
	}
	res, err := h.registration.Register(r.Context(), req.Door, req.Name)
	if err != nil {
		writeError(w, r, h.logger, "Register", err)
		return
	}
	writeText(w, http.StatusOK, res.Message)
}

// RecentByDoor GET /recent-names/{door}?limit=10
func (h *NameHandler) RecentByDoor(w http.ResponseWriter, r *http.Request) {
	door := r.PathValue("door")
	if err := checkDoor(r, door); err != nil {
		writeError(w, r, h.logger, "RecentByDoor", err)
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), service.DefaultRecentLimit)
	entries, err := h.registration.RecentByDoor(r.Context(), door, limit)
	if err != nil {
		writeError(w, r, h.logger, "RecentByDoor", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}

// AllNames GET /all-names
func (h *NameHandler) AllNames(w http.ResponseWriter, r *http.Request) {
	entries, err := h.registration.AllActive(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "AllNames", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}

// Stats GET /stats-data; bare {doorCounts, totalCount}, the shape the stats page polls.
func (h *NameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	agg, err := h.registration.Stats(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "Stats", err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// Search GET /names/{name}?allEvents=true|false
func (h *NameHandler) Search(w http.ResponseWriter, r *http.Request) {
	scope := service.ParseSearchScope(r.URL.Query().Get("allEvents"))
	entries, err := h.query.Search(r.Context(), r.PathValue("name"), scope)
	if err != nil {
		writeError(w, r, h.logger, "Search", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(entries))
}

// DeleteName DELETE /names/{id}
func (h *NameHandler) DeleteName(w http.ResponseWriter, r *http.Request) {
	if err := h.registration.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, "DeleteName", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("Name entry deleted", nil))
}

// DeleteAll DELETE /names
func (h *NameHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.registration.ClearActive(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "DeleteAll", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("All entries deleted", map[string]int64{"removed": n}))
}
