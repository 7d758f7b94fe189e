package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Bekarys01/unisport-system/middleware"
	"github.com/Bekarys01/unisport-system/realtime"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the deployed front-end origin
		return true
	},
}

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeInbox subscribes the authenticated user to their pending-invite room.
func (h *WebSocketHandler) ServeInbox(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	h.serve(w, r, realtime.InboxRoom(currentUserID))
}

// ServeEvent subscribes the client to an event's roster room.
func (h *WebSocketHandler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.serve(w, r, realtime.EventRoom(eventID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		slog.Warn("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
