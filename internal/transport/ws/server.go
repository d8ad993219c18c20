// Package ws exposes the replication protocol over a websocket endpoint.
// The socket gives the ordered, reliable, per-peer-addressable channel the
// sync discipline requires.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/protocol"
	"github.com/Chrhopeist/ExpeditionsReforged-sub000/internal/sim/tracker"
)

type Server struct {
	tracker *tracker.Tracker
	log     *log.Logger

	upgrader websocket.Upgrader
	connSeq  atomic.Uint64
}

func NewServer(t *tracker.Tracker, logger *log.Logger) *Server {
	return &Server{
		tracker: t,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, ok := s.handshake(conn)
		if !ok {
			return
		}
		connID := fmt.Sprintf("c%d", s.connSeq.Add(1))
		s.log.Printf("peer %s connected as player %s", connID, hello.PlayerID)
		out := make(chan []byte, 256)
		s.tracker.Join() <- tracker.JoinRequest{
			ConnID:     connID,
			PlayerID:   hello.PlayerID,
			PlayerName: hello.PlayerName,
			Out:        out,
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine. The tracker closes out on leave.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case frame, open := <-out:
					if !open {
						_ = conn.Close()
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop. Every decoded frame becomes a request envelope;
		// anything malformed is dropped here or in the tracker.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			mt, frame, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			if mt != websocket.BinaryMessage || len(frame) == 0 {
				continue
			}
			s.tracker.Inbox() <- tracker.Envelope{
				ConnID:   connID,
				PlayerID: hello.PlayerID,
				Frame:    frame,
			}
		}

		s.tracker.Leave() <- connID
		s.log.Printf("peer %s disconnected", connID)
	}
}

// handshake expects a HELLO frame as the first message and refuses the
// connection otherwise.
func (s *Server) handshake(conn *websocket.Conn) (protocol.Hello, bool) {
	var hello protocol.Hello
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, frame, err := conn.ReadMessage()
	if err != nil || mt != websocket.BinaryMessage {
		return hello, false
	}
	kind, payload, err := protocol.Split(frame)
	if err != nil || kind != protocol.KindHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return hello, false
	}
	if err := json.Unmarshal(payload, &hello); err != nil || hello.PlayerID == "" {
		return hello, false
	}
	return hello, true
}
