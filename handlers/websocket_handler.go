package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Nikman800/GambaGame/brackets"
	"github.com/Nikman800/GambaGame/logger"
	"github.com/Nikman800/GambaGame/middleware"
	"github.com/Nikman800/GambaGame/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub            *brackets.Hub
	bracketService services.BracketService
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler builds the subscription endpoint. An empty allowedOrigins or "*" accepts any origin.
func NewWebSocketHandler(hub *brackets.Hub, bs services.BracketService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		bracketService: bs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeWs handles GET /ws/brackets/{bracketID}. The connection starts in the
// bracket's room and may subscribe to more rooms with inbound messages.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, bracketIDParam)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.bracketService.GetBracket(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromContext(r.Context()).Warn("failed to upgrade websocket connection",
			slog.String("bracket_id", id), slog.Any("error", err))
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	client := h.hub.NewClient(conn, userID)
	h.hub.JoinRoom(client, id)

	go client.WritePump()
	go client.ReadPump()

	logger.FromContext(r.Context()).Info("websocket subscriber connected",
		slog.String("bracket_id", id), slog.String("user_id", userID))
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}
