package handlers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi"
	qrcode "github.com/skip2/go-qrcode"
	log "github.com/sirupsen/logrus"
)

const qrSize = 256

// GameQR renders the join code as a PNG. If CLIENT_BASE_URL is set the
// code embeds a deep link; otherwise the bare join code is encoded.
func (h *Handler) GameQR(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}

	content := g.JoinCode
	if base := os.Getenv("CLIENT_BASE_URL"); base != "" {
		content = base + "/join/" + g.JoinCode
	}
	h.writeQR(w, content)
}

// RoomQR renders a room's location token, printed and stuck on the
// physical room's door.
func (h *Handler) RoomQR(w http.ResponseWriter, r *http.Request) {
	room, err := h.svc.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeQR(w, room.QRToken)
}

func (h *Handler) writeQR(w http.ResponseWriter, content string) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		log.Errorf("failed to render QR code: %v", err)
		http.Error(w, "failed to render QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		log.Errorf("failed to write QR response: %v", err)
	}
}
