package httpapi

import (
	"net/http"

	"github.com/rekk2/event-registration/internal/service"

	"go.uber.org/zap"
)

type DoorHandler struct {
	doors  service.DoorService
	logger *zap.Logger
}

func NewDoorHandler(doors service.DoorService, logger *zap.Logger) *DoorHandler {
	return &DoorHandler{doors: doors, logger: logger}
}

// ListDoors GET /doors
func (h *DoorHandler) ListDoors(w http.ResponseWriter, r *http.Request) {
	doors, err := h.doors.ListDoors(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "ListDoors", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(doors))
}

// CreateDoor POST /doors {door}
func (h *DoorHandler) CreateDoor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Door string `json:"door"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	door, err := h.doors.CreateDoor(r.Context(), req.Door)
	if err != nil {
		writeError(w, r, h.logger, "CreateDoor", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(confirm("Door %s created", door.Door), door))
}

// RenameDoor PUT /doors/{id} {newDoorName}
func (h *DoorHandler) RenameDoor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewDoorName string `json:"newDoorName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	door, err := h.doors.RenameDoor(r.Context(), r.PathValue("id"), req.NewDoorName)
	if err != nil {
		writeError(w, r, h.logger, "RenameDoor", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(confirm("Door updated to %s", door.Door), door))
}

// DeleteDoor DELETE /doors/{id}
func (h *DoorHandler) DeleteDoor(w http.ResponseWriter, r *http.Request) {
	if err := h.doors.DeleteDoor(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, "DeleteDoor", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("Door deleted", nil))
}
