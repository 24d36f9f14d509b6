//go:build !js || !wasm
// +build !js !wasm

package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loomkit/willow/pkg/vango/vdom"
)

// EventHandler is invoked when the browser reports a dispatched event for
// a registry id this session knows about. It returns the edit script to
// push back, exactly like vdom.Handler, except routed through the wire id
// instead of a direct closure call.
type EventHandler func(id int, eventName string, arg any) ([]vdom.Edit, bool)

// Session owns one browser connection's WebSocket, its handler registry
// and the send/ping loop that keeps the socket alive.
type Session struct {
	ID       string
	Registry *Registry
	Dispatch EventHandler

	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	closeCh   chan struct{}
	seq       uint64
	logger    *slog.Logger
}

// NewSession wraps an upgraded WebSocket connection as a live session.
func NewSession(id string, conn *websocket.Conn, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:       id,
		Registry: NewRegistry(),
		conn:     conn,
		send:     make(chan []byte, 64),
		closeCh:  make(chan struct{}),
		logger:   logger.With("session", id),
	}
}

// Run sends the hello frame, starts the writer, and blocks reading
// incoming frames until the connection closes.
func (s *Session) Run(ctx context.Context) {
	go s.writer()

	if err := s.sendFrame(Frame{Type: FrameHello, SessionID: s.ID}); err != nil {
		s.logger.Error("failed to send hello", "err", err)
		return
	}

	s.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("unexpected close", "err", err)
			}
			return
		}
		s.handleFrame(data)
	}
}

func (s *Session) handleFrame(data []byte) {
	f, err := Unmarshal(data)
	if err != nil {
		s.logger.Warn("malformed frame", "err", err)
		return
	}

	switch f.Type {
	case FrameEvent:
		if s.Dispatch == nil {
			return
		}
		edits, ok := s.Dispatch(f.NodeID, f.Event, f.Arg)
		if !ok {
			return
		}
		s.SendEdits(edits)
	case FramePing:
		s.sendFrame(Frame{Type: FramePong})
	}
}

func (s *Session) writer() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.logger.Error("write failed", "err", err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) sendFrame(f Frame) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}
	select {
	case s.send <- data:
		return nil
	default:
		s.logger.Warn("send buffer full, dropping frame", "type", f.Type)
		return nil
	}
}

// SendRoot sends the initial realized tree for a freshly mounted component.
func (s *Session) SendRoot(root vdom.RealizedNode) error {
	nodes := EncodeNodes([]vdom.RealizedNode{root}, s.Registry)
	s.seq++
	return s.sendFrame(Frame{Type: FramePatch, Root: nodes, Seq: s.seq})
}

// SendEdits sends an edit script resulting from a host-side update.
func (s *Session) SendEdits(edits []vdom.Edit) error {
	if len(edits) == 0 {
		return nil
	}
	s.seq++
	return s.sendFrame(Frame{Type: FramePatch, Edits: EncodeEdits(edits, s.Registry), Seq: s.seq})
}

// Close tears the session down exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.conn.Close()
	})
}
