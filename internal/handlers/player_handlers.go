package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/crewlink/crewlink-server/internal/models"
)

type joinGameRequest struct {
	JoinCode string `json:"join_code"`
	Name     string `json:"name"`
	DeviceID string `json:"device_id"`
}

func (h *Handler) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.svc.JoinGame(r.Context(), req.JoinCode, req.Name, req.DeviceID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, p)
}

type playerActionRequest struct {
	PlayerID  string `json:"player_id"`
	TargetID  string `json:"target_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	RoomToken string `json:"room_token,omitempty"`
	Reason    string `json:"reason,omitempty"`
	BodyID    string `json:"body_id,omitempty"`
}

func (h *Handler) LeaveGame(w http.ResponseWriter, r *http.Request) {
	var req playerActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.LeaveGame(r.Context(), chi.URLParam(r, "gameID"), req.PlayerID); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, nil)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPlayer(r.Context(), chi.URLParam(r, "gameID"), chi.URLParam(r, "playerID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, p)
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.svc.ListPlayers(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, players)
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	var req playerActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.CompleteTask(r.Context(), chi.URLParam(r, "gameID"), req.PlayerID, chi.URLParam(r, "taskID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, p)
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req playerActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	room, err := h.svc.UpdateLocation(r.Context(), chi.URLParam(r, "gameID"), req.PlayerID, req.RoomToken)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, room)
}

// Report covers both a body report and an emergency meeting, selected
// by the reason field.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req playerActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	g, err := h.svc.CallMeeting(r.Context(), chi.URLParam(r, "gameID"), req.PlayerID, models.MeetingReason(req.Reason), req.BodyID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}

func (h *Handler) Kill(w http.ResponseWriter, r *http.Request) {
	var req playerActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	target, err := h.svc.Kill(r.Context(), chi.URLParam(r, "gameID"), req.PlayerID, req.TargetID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, target)
}

func (h *Handler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req playerActionRequest
	if !h.decode(w, r, &req) {
		return
	}
	g, err := h.svc.SubmitVote(r.Context(), chi.URLParam(r, "gameID"), req.PlayerID, req.TargetID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}
