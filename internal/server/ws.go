package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/JamesFein/langchain-rag-chat/internal/answer"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Query string `json:"query"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type   string `json:"type"` // "answer" or "error"
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleWebSocket runs a chat loop over a websocket connection. Each message
// carries one query; outcomes are mapped the same way as the /api/chat route.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWS(conn, wsResponse{Type: "error", Error: "invalid message format"})
			continue
		}

		query := strings.TrimSpace(req.Query)
		if query == "" {
			s.sendWS(conn, wsResponse{Type: "error", Error: "query cannot be empty"})
			continue
		}

		text, err := s.engine.Answer(r.Context(), query)
		if err != nil {
			if errors.Is(err, answer.ErrNotReady) {
				s.sendWS(conn, wsResponse{Type: "error", Error: "no documents have been ingested yet"})
			} else {
				log.Printf("server: websocket query: %v", err)
				s.sendWS(conn, wsResponse{Type: "error", Error: "could not retrieve an answer"})
			}
			continue
		}

		s.sendWS(conn, wsResponse{Type: "answer", Answer: text})
	}
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}
