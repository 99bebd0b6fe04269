package socketio_types

import (
	"sync"

	"Impostor/services/events"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer wraps the socket.io server and tracks which socket speaks
// for which player, so lobby events can skip the actor or target a DM.
type SocketServer struct {
	Sio_server *socket.Server
	// player id -> socket
	PlayerConnections map[uint]*socket.Socket
	mutex             sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		Sio_server:        socket.NewServer(nil, nil),
		PlayerConnections: make(map[uint]*socket.Socket),
	}
}

func (s *SocketServer) AddConnection(playerID uint, sock *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.PlayerConnections[playerID] = sock
}

// RemoveConnection forgets playerID, but only while it still maps to sock;
// a newer tab of the same player keeps its entry.
func (s *SocketServer) RemoveConnection(playerID uint, sock *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if current, ok := s.PlayerConnections[playerID]; ok && current == sock {
		delete(s.PlayerConnections, playerID)
	}
}

func (s *SocketServer) GetConnection(playerID uint) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	sock, exists := s.PlayerConnections[playerID]
	return sock, exists && sock != nil
}

// Publish fans an event out to the lobby room named by topic.
func (s *SocketServer) Publish(topic string, ev events.Event) {
	if len(ev.Recipients) > 0 {
		for _, id := range ev.Recipients {
			if sock, ok := s.GetConnection(id); ok {
				if err := sock.Emit(ev.Name, ev.Payload); err != nil {
					log.Warn().Err(err).Str("event", ev.Name).Uint("player", id).Msg("direct emit failed")
				}
			}
		}
		return
	}

	op := s.Sio_server.To(socket.Room(topic))
	if ev.Except != 0 {
		if sock, ok := s.GetConnection(ev.Except); ok {
			op = op.Except(socket.Room(sock.Id()))
		}
	}
	if err := op.Emit(ev.Name, ev.Payload); err != nil {
		log.Warn().Err(err).Str("event", ev.Name).Str("lobby", topic).Msg("broadcast failed")
	}
}
