package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/game"
)

type Handler struct {
	svc       *game.Service
	tokenAuth *jwtauth.JWTAuth
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func NewHandler(svc *game.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}

// mintAdminToken issues the bearer token returned to the admin who
// created a game.
func (h *Handler) mintAdminToken(adminID string) string {
	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"admin_id": adminID,
		"exp":      expirationTime,
	})
	if err != nil {
		log.Errorf("failed to mint admin token: %v", err)
		return ""
	}
	return tokenString
}

func newAdminID() string { return uuid.New().String() }

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) ok(w http.ResponseWriter, data interface{}) {
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: data})
}

// fail maps an engine error to its status class and writes the error
// envelope.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := game.HTTPStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Errorf("unexpected error: %v", err)
		msg = "internal error"
	}
	h.CreateResponse(w, Response{Message: "error", Code: code, Error: msg})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.CreateResponse(w, Response{Message: "error", Code: http.StatusBadRequest, Error: "malformed request body"})
		return false
	}
	return true
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "game service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    200,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}
