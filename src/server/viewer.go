package server

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Viewers receive at most a few cycles per second and only ever send
// subscribe commands, so the limits are tight.
const (
	viewerWriteTimeout = 5 * time.Second
	viewerIdleTimeout  = 30 * time.Second
	viewerPingInterval = 10 * time.Second
	viewerQueueSize    = 64
	maxCommandBytes    = 4 * 1024
)

// Viewer is one websocket connection following the cycle feed. The hub owns
// send; only the hub writes to or closes it.
type Viewer struct {
	hub    *StatusServer
	conn   *websocket.Conn
	send   chan interface{}
	remote string

	mu      sync.Mutex
	symbols []string
}

// reply is a direct answer to one viewer, delivered by the hub.
type reply struct {
	viewer  *Viewer
	message interface{}
}

func newViewer(hub *StatusServer, conn *websocket.Conn) *Viewer {
	return &Viewer{
		hub:    hub,
		conn:   conn,
		send:   make(chan interface{}, viewerQueueSize),
		remote: conn.RemoteAddr().String(),
	}
}

// Symbols returns the viewer's subscription, nil meaning every symbol.
func (v *Viewer) Symbols() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.symbols
}

func (v *Viewer) SetSymbols(symbols []string) {
	v.mu.Lock()
	v.symbols = append([]string(nil), symbols...)
	v.mu.Unlock()
}

// -----------------------------------------------------------------------------

// readCommands applies subscribe commands until the viewer goes silent for
// longer than viewerIdleTimeout or disconnects. Pongs count as activity.
func (v *Viewer) readCommands() {
	defer v.hub.detach(v)

	v.conn.SetReadLimit(maxCommandBytes)
	extend := func() error { return v.conn.SetReadDeadline(time.Now().Add(viewerIdleTimeout)) }
	extend()
	v.conn.SetPongHandler(func(string) error { return extend() })

	for {
		kind, message, err := v.conn.ReadMessage()
		switch {
		case err == nil:
		case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
			return
		case errors.Is(err, websocket.ErrReadLimit):
			v.hub.Logger.Warning("Viewer %s sent a command over %d bytes", v.remote, maxCommandBytes)
			return
		default:
			v.hub.Logger.Debug("Viewer %s read failed: %v", v.remote, err)
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		extend()
		v.hub.HandleClientMessage(v, message)
	}
}

// -----------------------------------------------------------------------------

// writeFrames pushes queued summaries as JSON and keeps the connection alive
// with pings. It ends when the hub closes send or a write fails.
func (v *Viewer) writeFrames() {
	ping := time.NewTicker(viewerPingInterval)
	defer ping.Stop()
	defer v.conn.Close()

	for {
		select {
		case frame, open := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(viewerWriteTimeout))
			if !open {
				bye := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "status feed closed")
				v.conn.WriteMessage(websocket.CloseMessage, bye)
				return
			}
			if err := v.conn.WriteJSON(frame); err != nil {
				v.hub.Logger.Warning("Dropping viewer %s: %v", v.remote, err)
				return
			}

		case <-ping.C:
			deadline := time.Now().Add(viewerWriteTimeout)
			if err := v.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				v.hub.Logger.Debug("Viewer %s missed a ping: %v", v.remote, err)
				return
			}
		}
	}
}
