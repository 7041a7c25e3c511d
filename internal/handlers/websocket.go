package handlers

import (
	"net/http"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedReadLimit  = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the feed is public, tokens travel in the query string
	},
}

// WebSocketHandler serves the live feed of one crime
type WebSocketHandler struct {
	hub          *services.FeedHub
	userService  *services.UserService
	crimeService *services.CrimeService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.FeedHub,
	userService *services.UserService,
	crimeService *services.CrimeService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		userService:  userService,
		crimeService: crimeService,
	}
}

// HandleFeed handles GET /ws/crimes/{crime_id}. The feed is read-only:
// client messages other than control frames are ignored.
func (h *WebSocketHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	crimeID := chi.URLParam(r, "crime_id")

	// Token is optional, it only unlocks hidden crimes for their reporter and admins
	var viewerID string
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := middleware.ValidateWebSocketToken(token, h.userService)
		if err != nil {
			respondError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		viewerID = claims.UserID
	}

	if _, err := h.crimeService.Get(r.Context(), viewerID, crimeID); err != nil {
		respondServiceError(w, r, err, "Failed to open crime feed")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	unsubscribe := h.hub.Subscribe(crimeID, conn)
	defer unsubscribe()

	log.Info().
		Str("crime_id", crimeID).
		Str("user_id", viewerID).
		Msg("Feed connection established")

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(conn, done)

	conn.SetReadLimit(feedReadLimit)
	conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("crime_id", crimeID).Msg("WebSocket error")
			}
			break
		}
	}
}

// keepAlive pings the client until done is closed
func (h *WebSocketHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}
