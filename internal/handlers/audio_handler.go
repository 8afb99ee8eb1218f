package handlers

import (
	"net/http"
	"strings"

	"spellbee/internal/audio"
	"spellbee/internal/logger"
	"spellbee/internal/validation"
)

// AudioHandler speaks words through the user's player
type AudioHandler struct {
	players *audio.Players
	log     *logger.Logger
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(players *audio.Players, log *logger.Logger) *AudioHandler {
	return &AudioHandler{
		players: players,
		log:     log.With("handler", "AudioHandler"),
	}
}

// Speak synthesizes ?text= and streams the MP3. A newer request from the
// same user interrupts this one.
func (h *AudioHandler) Speak(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaimsFromContext(r.Context())
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" || len(text) > 100 {
		respondWithServiceError(w, h.log, validation.ValidationError{Field: "text", Message: "text must be 1 to 100 characters"})
		return
	}
	slow := r.URL.Query().Get("slow") == "true"

	player := h.players.For(claims.Username)
	h.log.Debug("Speaking", "username", claims.Username, "slow", slow, "players", h.players.Len())
	path, err := player.Play(r.Context(), text, slow)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeFile(w, r, path)
}
