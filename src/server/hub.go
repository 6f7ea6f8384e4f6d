package server

import (
	"encoding/json"
	"net/http"

	"waveform-streamer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *StatusServer) handleWebsockets() {
	for {
		select {
		case viewer := <-s.register:
			s.clients[viewer] = struct{}{}
			// Send latest state on connect
			s.stateMutex.RLock()
			initial := filterSummary(s.latestState, nil, "INITIAL")
			s.stateMutex.RUnlock()
			viewer.send <- initial

		case viewer := <-s.unregister:
			if _, ok := s.clients[viewer]; ok {
				delete(s.clients, viewer)
				close(viewer.send)
			}

		case message := <-s.broadcast:
			for viewer := range s.clients {
				select {
				case viewer.send <- filterSummary(message, viewer.Symbols(), message.Type):
				default:
					// A viewer this far behind is dropped rather than stall the hub
					s.Logger.Warning("Viewer %s fell %d cycles behind, dropping it", viewer.remote, viewerQueueSize)
					delete(s.clients, viewer)
					close(viewer.send)
				}
			}

		case r := <-s.replies:
			if _, ok := s.clients[r.viewer]; ok {
				select {
				case r.viewer.send <- r.message:
				default:
				}
			}

		case <-s.quit:
			for viewer := range s.clients {
				delete(s.clients, viewer)
				close(viewer.send)
			}
			return
		}
	}
}

func (s *StatusServer) connections() int {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.connected
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast records a completed cycle and queues it for every viewer. When
// the queue is full the cycle is kept in the history but not pushed.
func (s *StatusServer) Broadcast(summary *models.MCycleSummary) {
	if summary == nil {
		return
	}

	s.stateMutex.Lock()
	s.latestState = summary
	s.history.Append(*summary)
	s.stateMutex.Unlock()

	select {
	case s.broadcast <- summary:
	case <-s.quit:
	default:
		s.Logger.Warning("Broadcast queue full, cycle %d not pushed", summary.Acquisition)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *StatusServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	viewer := newViewer(s, conn)
	select {
	case s.register <- viewer:
	case <-s.quit:
		conn.Close()
		return
	}
	s.stateMutex.Lock()
	s.connected++
	n := s.connected
	s.stateMutex.Unlock()
	s.Logger.Info("Viewer %s connected (%d watching)", viewer.remote, n)

	go viewer.writeFrames()
	go viewer.readCommands()
}

// detach unregisters a viewer whose read side ended and closes its socket,
// which also stops its writer.
func (s *StatusServer) detach(v *Viewer) {
	select {
	case s.unregister <- v:
	case <-s.quit:
	}
	v.conn.Close()

	s.stateMutex.Lock()
	s.connected--
	n := s.connected
	s.stateMutex.Unlock()
	s.Logger.Info("Viewer %s disconnected (%d watching)", v.remote, n)
}

// -----------------------------------------------------------------------------
// Viewer Commands
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe command: the client only receives
// the listed symbols from now on (all of them when the list is empty) and
// gets the latest cycle filtered accordingly.
func (s *StatusServer) HandleClientMessage(viewer *Viewer, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Warning("Viewer %s sent an unreadable command, disconnecting: %v", viewer.remote, err)
		viewer.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}
	viewer.SetSymbols(cmd.Symbols)

	s.stateMutex.RLock()
	response := filterSummary(s.latestState, cmd.Symbols, "INITIAL")
	s.stateMutex.RUnlock()

	// The hub owns viewer.send, so the reply goes through it.
	select {
	case s.replies <- reply{viewer: viewer, message: response}:
	case <-s.quit:
	}
}
