// Package rest is the read-side HTTP surface: lobby listings and health
// for anything that speaks plain HTTP, plus guest registration for
// clients that do not hold a token yet. Matches are never played here;
// play goes over the websocket.
package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/matryer/way"
	"github.com/sirupsen/logrus"

	"triad/internal/app"
)

// Handler serves the REST routes over the room and guest services.
type Handler struct {
	rooms  *app.RoomService
	guests *app.GuestService
	log    *logrus.Logger
}

func NewHandler(rooms *app.RoomService, guests *app.GuestService, log *logrus.Logger) *Handler {
	return &Handler{rooms: rooms, guests: guests, log: log}
}

// Routes mounts every REST endpoint on the router.
func (h *Handler) Routes(router *way.Router) {
	router.HandleFunc("GET", "/health", h.handleHealth())
	router.HandleFunc("GET", "/games", h.handleListGames())
	router.HandleFunc("GET", "/games/:id", h.handleGetGame())
	router.HandleFunc("POST", "/auth/guest", h.handleGuestAuth())
}

// gameSummary mirrors the websocket lobby shape so both surfaces report
// games identically.
type gameSummary struct {
	GameID           string    `json:"gameId"`
	Status           string    `json:"status"`
	Player1          string    `json:"player1"`
	Player2          string    `json:"player2,omitempty"`
	Player1Connected bool      `json:"player1Connected"`
	Player2Connected bool      `json:"player2Connected"`
	CreatedAt        time.Time `json:"createdAt"`
}

func summaryView(s app.RoomSummary) gameSummary {
	return gameSummary{
		GameID:           s.ID,
		Status:           string(s.Status),
		Player1:          s.Player1,
		Player2:          s.Player2,
		Player1Connected: s.Player1Connected,
		Player2Connected: s.Player2Connected,
		CreatedAt:        s.CreatedAt,
	}
}

func (h *Handler) handleHealth() http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
		Games  int    `json:"games"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, response{Status: "ok", Games: h.rooms.Count()})
	}
}

func (h *Handler) handleListGames() http.HandlerFunc {
	type response struct {
		Games []gameSummary `json:"games"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		summaries := h.rooms.Summaries()
		games := make([]gameSummary, 0, len(summaries))
		for _, s := range summaries {
			games = append(games, summaryView(s))
		}
		h.writeJSON(w, http.StatusOK, response{Games: games})
	}
}

func (h *Handler) handleGetGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := way.Param(r.Context(), "id")
		snap, err := h.rooms.Room(id)
		if err != nil {
			h.writeError(w, http.StatusNotFound, "game not found")
			return
		}
		h.writeJSON(w, http.StatusOK, gameSummary{
			GameID:           snap.ID,
			Status:           string(snap.Status),
			Player1:          snap.Player1,
			Player2:          snap.Player2,
			Player1Connected: snap.Online1,
			Player2Connected: snap.Online2,
			CreatedAt:        snap.CreatedAt,
		})
	}
}

func (h *Handler) handleGuestAuth() http.HandlerFunc {
	type response struct {
		PlayerID string `json:"playerId"`
		Name     string `json:"name"`
		Token    string `json:"token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		guest, err := h.guests.Register()
		if err != nil {
			h.log.Errorf("rest: guest registration: %v", err)
			h.writeError(w, http.StatusInternalServerError, "failed to register guest")
			return
		}
		h.log.Infof("rest: guest %s registered as %q", guest.PlayerID, guest.Name)
		h.writeJSON(w, http.StatusOK, response{PlayerID: guest.PlayerID, Name: guest.Name, Token: guest.Token})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warnf("rest: write response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
