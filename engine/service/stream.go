package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Stream event types
const (
	EventNode  = "node"
	EventPlan  = "plan"
	EventError = "error"
)

// StreamEvent is one websocket message of /plan/stream
type StreamEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NodeEvent is one tree node, sent in insertion order so clients can
// animate the tree growing. Parent is -1 for the root.
type NodeEvent struct {
	ID     int     `json:"id"`
	Parent int     `json:"parent"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Cost   float64 `json:"cost"`
}

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// handleStream reads one PlanRequest from the socket, then sends every tree node
// followed by the plan, and closes
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req PlanRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.sendError(conn, errors.New("invalid request"))
		return
	}
	resp, tree, err := s.plan(r.Context(), req, false)
	if err != nil {
		s.sendError(conn, err)
		return
	}

	for _, n := range tree.Nodes() {
		parent := -1
		if n.Parent != nil {
			parent = n.Parent.ID
		}
		ev := NodeEvent{ID: n.ID, Parent: parent, X: n.Pos.X, Y: n.Pos.Y, Cost: n.FullCost()}
		if err := s.send(conn, EventNode, ev); err != nil {
			s.logger.Debug("stream aborted", "error", err)
			return
		}
	}
	if err := s.send(conn, EventPlan, resp); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(streamWriteTimeout))
}

func (s *Service) send(conn *websocket.Conn, typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(StreamEvent{Type: typ, Data: data})
}

func (s *Service) sendError(conn *websocket.Conn, err error) {
	_ = s.send(conn, EventError, map[string]string{"error": err.Error()})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseUnsupportedData, ""),
		time.Now().Add(streamWriteTimeout))
}
