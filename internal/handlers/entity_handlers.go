package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/crewlink/crewlink-server/internal/models"
)

type createRoomRequest struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	AutomationEntities []string `json:"automation_entities,omitempty"`
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !h.decode(w, r, &req) {
		return
	}
	room, err := h.svc.CreateRoom(r.Context(), chi.URLParam(r, "gameID"), req.Name, req.Description, req.AutomationEntities)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, room)
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.ListRooms(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, rooms)
}

func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRoom(r.Context(), chi.URLParam(r, "roomID")); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, nil)
}

type createTaskRequest struct {
	RoomID           string              `json:"room_id"`
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	Verification     models.Verification `json:"verification"`
	AutomationConfig map[string]string   `json:"automation_config,omitempty"`
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.svc.CreateTask(r.Context(), chi.URLParam(r, "gameID"), req.RoomID, req.Name, req.Description, req.Verification, req.AutomationConfig)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, task)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListTasks(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, tasks)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, nil)
}
