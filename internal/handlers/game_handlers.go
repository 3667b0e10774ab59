package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/crewlink/crewlink-server/internal/models"
)

type createGameRequest struct {
	Name     string               `json:"name"`
	Settings *models.GameSettings `json:"settings,omitempty"`
}

type createGameResponse struct {
	Game       *models.Game `json:"game"`
	AdminToken string       `json:"admin_token"`
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	adminID := newAdminID()
	g, err := h.svc.CreateGame(r.Context(), req.Name, adminID, req.Settings)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.ok(w, createGameResponse{Game: g, AdminToken: h.mintAdminToken(adminID)})
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}

type updateGameRequest struct {
	Name     *string              `json:"name,omitempty"`
	Settings *models.GameSettings `json:"settings,omitempty"`
}

func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	var req updateGameRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.svc.UpdateGame(r.Context(), chi.URLParam(r, "gameID"), req.Name, req.Settings)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}

func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, nil)
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.StartGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}

func (h *Handler) EndGame(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.EndGame(r.Context(), chi.URLParam(r, "gameID"), "admin")
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, g)
}

func (h *Handler) GameStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, stats)
}
