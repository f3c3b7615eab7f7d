// Package server exposes the engine protocol over a websocket, one engine
// per connection. It is a host adapter: it forwards commands and streams
// snapshots, nothing more.
package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The demo host is served from anywhere during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe blocks serving the websocket endpoint on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Printf("listening on %s (endpoint /ws)", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade failed: %v", err)
		return
	}
	s.logger.Printf("host connected: %s", conn.RemoteAddr())

	eng := engine.New()

	// Writer: drain engine notes onto the socket. The engine contract
	// requires draining even if the write side is slow, so this loop only
	// exits when the engine closes its notes channel.
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for note := range eng.Notes() {
			if err := conn.WriteJSON(protocol.FromEngine(note)); err != nil {
				// Keep draining; the reader will notice the dead
				// connection and close the engine.
				continue
			}
		}
	}()

	// Reader: commands until the peer goes away.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		cmd, err := protocol.ParseCommand(data)
		if err != nil {
			s.logger.Printf("%s: %v", conn.RemoteAddr(), err)
			continue
		}
		s.dispatch(eng, cmd)
	}

	eng.Close()
	<-writeDone
	conn.Close()
	s.logger.Printf("host disconnected: %s", conn.RemoteAddr())
}

func (s *Server) dispatch(eng *engine.Engine, cmd *protocol.Command) {
	switch cmd.Type {
	case protocol.CmdStart:
		p := cmd.Params
		if p == nil {
			// Missing params falls back to defaults, consistent with
			// field-level clamping.
			def := config.DefaultProjectile()
			p = &def
		}
		eng.Start(*p, cmd.Speed)
	case protocol.CmdPause:
		eng.Pause()
	case protocol.CmdResume:
		eng.Resume()
	case protocol.CmdSetSpeed:
		eng.SetSpeed(cmd.Speed)
	}
}
