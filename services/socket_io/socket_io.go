package socket_io

import (
	"context"
	"sync"
	"time"

	"Impostor/services/game"
	socketio_types "Impostor/services/socket_io/types"
	"Impostor/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

const requestTimeout = 5 * time.Second

// Lobbies is the part of the game service sockets need.
type Lobbies interface {
	Seat(ctx context.Context, code, session string) (*game.Membership, error)
	GameState(ctx context.Context, code, session string) (*game.GameState, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type MySocketServer socketio_types.SocketServer

// Start registers the connection handlers and mounts the socket.io
// endpoint on router.
func (sio *MySocketServer) Start(router *gin.Engine, lobbies Lobbies, tokens TokenVerifier, origins []string) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(false)
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      corsOrigin(origins),
		Credentials: true,
	})

	server := (*socketio_types.SocketServer)(sio)
	sio.Sio_server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)

		session, ok := verifyConnection(client, tokens)
		if !ok {
			client.Disconnect(true)
			return
		}
		conn := &connection{client: client, session: session, server: server, lobbies: lobbies, joined: make(map[string]uint)}
		log.Debug().Str("socket", string(client.Id())).Msg("socket connected")

		client.On("join_lobby", conn.handleJoin)
		client.On("leave_lobby", conn.handleLeave)
		client.On("get_state", conn.handleState)
		client.On("disconnecting", conn.handleDisconnecting)
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	log.Info().Msg("socket server started")
}

// Close disconnects every client.
func (sio *MySocketServer) Close() {
	sio.Sio_server.Close(nil)
}

func corsOrigin(origins []string) any {
	switch {
	case len(origins) == 0 || (len(origins) == 1 && origins[0] == "*"):
		return "*"
	case len(origins) == 1:
		return origins[0]
	default:
		// reflect the request origin; the handshake token is the real gate
		return true
	}
}

// verifyConnection reads the session token from the handshake auth data.
func verifyConnection(client *socket.Socket, tokens TokenVerifier) (string, bool) {
	authData, ok := client.Handshake().Auth.(map[string]any)
	if !ok {
		client.Emit("error", gin.H{"error": "authentication failed: missing auth data"})
		return "", false
	}
	token, ok := authData["token"].(string)
	if !ok || token == "" {
		client.Emit("error", gin.H{"error": "authentication failed: missing token"})
		return "", false
	}
	session, err := tokens.Verify(token)
	if err != nil {
		log.Debug().Err(err).Msg("rejected socket token")
		client.Emit("error", gin.H{"error": "authentication failed: invalid token"})
		return "", false
	}
	return session, true
}

// connection is the per-socket state: the lobbies this socket follows and
// the player it speaks for in each.
type connection struct {
	client  *socket.Socket
	session string
	server  *socketio_types.SocketServer
	lobbies Lobbies

	mu     sync.Mutex
	joined map[string]uint
}

func lobbyCode(client *socket.Socket, args []any) (string, bool) {
	if len(args) < 1 {
		client.Emit("error", gin.H{"error": "missing lobby code"})
		return "", false
	}
	raw, ok := args[0].(string)
	if !ok || raw == "" {
		client.Emit("error", gin.H{"error": "lobby code must be a string"})
		return "", false
	}
	code, ok := utils.NormalizeLobbyCode(raw)
	if !ok {
		client.Emit("error", gin.H{"error": "invalid lobby code"})
		return "", false
	}
	return code, true
}

func (c *connection) handleJoin(args ...any) {
	code, ok := lobbyCode(c.client, args)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	seat, err := c.lobbies.Seat(ctx, code, c.session)
	if err != nil {
		c.client.Emit("error", gin.H{"error": err.Error()})
		return
	}

	c.client.Join(socket.Room(seat.Code))
	c.server.AddConnection(seat.PlayerID, c.client)
	c.mu.Lock()
	c.joined[seat.Code] = seat.PlayerID
	c.mu.Unlock()

	log.Debug().Str("lobby", seat.Code).Uint("player", seat.PlayerID).Msg("socket joined lobby")
	c.client.Emit("lobby_joined", seat)
}

func (c *connection) handleLeave(args ...any) {
	code, ok := lobbyCode(c.client, args)
	if !ok {
		return
	}
	c.mu.Lock()
	playerID, joined := c.joined[code]
	delete(c.joined, code)
	c.mu.Unlock()
	if !joined {
		return
	}
	c.client.Leave(socket.Room(code))
	c.server.RemoveConnection(playerID, c.client)
}

func (c *connection) handleState(args ...any) {
	code, ok := lobbyCode(c.client, args)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	state, err := c.lobbies.GameState(ctx, code, c.session)
	if err != nil {
		c.client.Emit("error", gin.H{"error": err.Error()})
		return
	}
	c.client.Emit("game_state", state)
}

// handleDisconnecting drops the socket from the routing table. Seats are
// kept so a reload can reconnect; leaving is explicit.
func (c *connection) handleDisconnecting(...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for code, playerID := range c.joined {
		c.server.RemoveConnection(playerID, c.client)
		delete(c.joined, code)
	}
	log.Debug().Str("socket", string(c.client.Id())).Msg("socket disconnecting")
}
