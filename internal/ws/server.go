// Package ws serves the daemon status: a health document, a websocket of
// button and diagnostic events, and a websocket accepting control commands.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-seesaw/diagnostics"
)

const writeWait = 200 * time.Millisecond

// Event is one message on /events.
type Event struct {
	T          int64                   `json:"t"`
	Kind       string                  `json:"kind"` // "button" | "diag"
	Name       string                  `json:"name,omitempty"`
	State      *bool                   `json:"state,omitempty"`
	Diagnostic *diagnostics.Diagnostic `json:"diagnostic,omitempty"`
}

// Command is one message accepted on /control.
type Command struct {
	Pattern    string   `json:"pattern,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
	Blank      bool     `json:"blank,omitempty"`
}

// Reply answers every Command.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type Opts struct {
	// Describe returns the configuration dump served on /health.
	Describe func() []diagnostics.Report
	// Control applies a command; nil rejects every command.
	Control func(Command) error
	Logger  *zerolog.Logger
}

type Server struct {
	mu        sync.RWMutex
	opts      Opts
	log       zerolog.Logger
	clients   map[*websocket.Conn]bool
	startTime time.Time
	events    uint64
	up        websocket.Upgrader
}

func New(opts Opts) *Server {
	l := zerolog.Nop()
	if opts.Logger != nil {
		l = opts.Logger.With().Str("component", "ws").Logger()
	}
	return &Server{
		opts:      opts,
		log:       l,
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
		up:        websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Handler routes /health, /events and /control.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/events", s.HandleEventsWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	return withCORS(mux)
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var reports []diagnostics.Report
	if s.opts.Describe != nil {
		reports = s.opts.Describe()
	}
	healthy := true
	for _, rep := range reports {
		if rep.Failed {
			healthy = false
		}
	}
	s.mu.RLock()
	resp := map[string]any{
		"healthy":    healthy,
		"uptime_s":   time.Since(s.startTime).Seconds(),
		"events":     s.events,
		"clients":    len(s.clients),
		"components": reports,
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) HandleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var reply Reply
		var cmd Command
		switch {
		case json.Unmarshal(data, &cmd) != nil:
			reply.Error = "malformed command"
		case s.opts.Control == nil:
			reply.Error = "control disabled"
		default:
			if err := s.opts.Control(cmd); err != nil {
				reply.Error = err.Error()
			} else {
				reply.OK = true
			}
		}
		s.log.Debug().Bytes("cmd", data).Bool("ok", reply.OK).Msg("control")
		b, _ := json.Marshal(reply)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// ClientCount is the number of connected /events clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// PublishButton broadcasts a binary sensor state.
func (s *Server) PublishButton(name string, state bool) {
	s.broadcast(Event{T: time.Now().UnixNano(), Kind: "button", Name: name, State: &state})
}

// PushDiag broadcasts a diagnostic.
func (s *Server) PushDiag(d diagnostics.Diagnostic) {
	s.broadcast(Event{T: time.Now().UnixNano(), Kind: "diag", Diagnostic: &d})
}

func (s *Server) broadcast(e Event) {
	b, _ := json.Marshal(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events++
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write event")
		}
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
