//go:build !js || !wasm
// +build !js !wasm

package live

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Server accepts WebSocket upgrades and hands each one to a fresh Session.
type Server struct {
	upgrader websocket.Upgrader
	sessions map[string]*Session
	mu       sync.RWMutex
	logger   *slog.Logger

	// NewDispatch builds the EventHandler for a freshly created session,
	// typically closing over a pkg/server.Instance keyed by session id.
	NewDispatch func(sessionID string) EventHandler

	// OnConnect, when set, runs right after a session is registered but
	// before its read loop starts, so a caller can attach the session to
	// its component instance and send the initial realized tree.
	OnConnect func(sessionID string, s *Session)
}

// NewServer constructs a live protocol server. allowedOrigins, when
// non-empty, restricts upgrades to those Origin headers; an empty list
// allows any origin, matching local development defaults.
func NewServer(logger *slog.Logger, allowedOrigins ...string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range allowedOrigins {
					if o == origin {
						return true
					}
				}
				return false
			},
		},
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// ServeHTTP upgrades the connection and runs its session. The session id
// is the trailing path segment, e.g. /live/{session}.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := lastPathSegment(r.URL.Path)
	if sessionID == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	session := NewSession(sessionID, conn, s.logger)
	if s.NewDispatch != nil {
		session.Dispatch = s.NewDispatch(sessionID)
	}

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	if s.OnConnect != nil {
		s.OnConnect(sessionID, session)
	}

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
	}()

	session.Run(r.Context())
}

// Session retrieves a live session by id, if it is currently connected.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Sessions returns the ids of every currently connected session, used by
// the operator dashboard to list active mounts.
func (s *Server) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func lastPathSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
