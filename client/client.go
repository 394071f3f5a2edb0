// Package client composes a session.Socket into a full Minecraft client:
// a multi-handler packet registry (unlike session's single-handler,
// torn-down-after-login handler.Registry), a typed event dispatcher, and
// the main loop that drains queued events and polls the socket.
//
// Packet flow (Play phase only — login is owned entirely by session.Socket):
//
//	Start()
//	  → events.dispatchAll(c)           → run queued event handlers
//	  → sock.ReceiveNonBlocking()        → poll for a frame, PollInterval idle sleep
//	  → handlePacket(frame)              → run every registered handler for frame.ID
//
// Send flow:
//
//	SendChat(text)            → chatChain(ctx, OutboundPacket)  → logging → rate limit → timeout → sock.Send
//	Respawn/keep-alive echo   → plainChain(ctx, OutboundPacket) → logging → timeout → sock.Send
//
// plainChain carries no rate limiter: a chat burst must never starve a
// keep-alive echo, since a dropped keep-alive is what gets a client kicked
// for timing out.
package client

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"miners-go/loadbalance"
	"miners-go/middleware"
	"miners-go/packets"
	"miners-go/protocol"
	"miners-go/registry"
	"miners-go/session"
)

// PacketHandlerFunc handles one decoded Play-phase frame. Unlike
// handler.Handler, there is no Outcome return: Play-phase handling
// never tears down the registry or exits the connection, it only reacts.
type PacketHandlerFunc func(c *Client, frame *protocol.Frame)

// Config describes how to reach and authenticate against a server.
type Config struct {
	Username string
	Host     string
	Port     uint16
}

// Client is the composed, user-facing handle: a session.Socket plus a
// multi-handler packet registry and an event dispatcher. The whole struct
// is guarded by one RWMutex, matching the teacher's single-lock-per-shared-
// resource discipline — reads (handler lookup, state queries) take RLock,
// mutation (Register*, handler teardown) takes Lock.
type Client struct {
	mu       sync.RWMutex
	sock     *session.Socket
	username string

	handlers map[int32][]PacketHandlerFunc
	events   *eventDispatcher

	// chatChain wraps only the Client Chat (0x05) send path with the rate
	// limiter, per the rate limiter's own scope (avoid server-side chat-spam
	// kicks). plainChain wraps every other outbound send (keep-alive echo,
	// client command) with logging/timeout but no rate limit, so a chat
	// burst can never starve a keep-alive echo and get the client kicked
	// for timing out.
	chatChain  middleware.SendFunc
	plainChain middleware.SendFunc

	reconnect *session.ReconnectPool
}

// New dials and logs in, retrying the dial with exponential backoff
// (middleware.RetryDial) since a fresh TCP connection has no server-visible
// state yet and is always safe to retry. SpawnEvent is queued (not
// dispatched) before New returns, so a handler registered with On/Once
// between New and Start will still observe it on Start's first tick.
func New(cfg Config) (*Client, error) {
	var sock *session.Socket
	err := middleware.RetryDial(3, 500*time.Millisecond, "login", func() error {
		s, err := session.Connect(cfg.Host, cfg.Port, cfg.Username)
		if err != nil {
			return err
		}
		sock = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		sock:     sock,
		username: cfg.Username,
		handlers: make(map[int32][]PacketHandlerFunc),
		events:   newEventDispatcher(),
	}
	c.chatChain = middleware.Chain(
		middleware.LoggingMiddleware(),
		middleware.RateLimitMiddleware(20, 5),
		middleware.TimeOutMiddleware(5*time.Second),
	)(c.rawSend)
	c.plainChain = middleware.Chain(
		middleware.LoggingMiddleware(),
		middleware.TimeOutMiddleware(5*time.Second),
	)(c.rawSend)

	c.registerBuiltinHandlers()
	Emit(c, SpawnEvent{})

	return c, nil
}

// DialBookmark resolves nickname through reg, picks one bookmark with bal,
// and connects to it — the registry/load-balance path for a player
// connecting to a named server instead of a literal host:port.
func DialBookmark(reg registry.Registry, bal loadbalance.Balancer, nickname, username string) (*Client, error) {
	bookmarks, err := reg.Discover(nickname)
	if err != nil {
		return nil, err
	}
	bookmark, err := bal.Pick(bookmarks)
	if err != nil {
		return nil, err
	}
	return New(Config{Username: username, Host: bookmark.Host, Port: bookmark.Port})
}

// EnableReconnect pre-warms a standby pool of n TCP connections to the
// current server address so Reconnect can skip dial latency.
func (c *Client) EnableReconnect(standby int) error {
	c.mu.Lock()
	addr := fmt.Sprintf("%s:%d", c.sock.Host(), c.sock.Port())
	pool := session.NewReconnectPool(addr, standby)
	c.reconnect = pool
	c.mu.Unlock()
	return pool.Warm(standby)
}

// Reconnect drops the current socket and logs back in, pulling a standby
// connection from the reconnect pool when one is available (EnableReconnect
// must have been called first; otherwise it dials fresh).
func (c *Client) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	host, port, protocolVersion := c.sock.Host(), c.sock.Port(), c.sock.ProtocolVersion()
	c.sock.Disconnect()

	if c.reconnect != nil {
		pooled, err := c.reconnect.Acquire()
		if err == nil {
			sock, err := session.ConnectOverConn(pooled, host, port, protocolVersion, c.username)
			if err != nil {
				pooled.MarkUnusable()
				c.reconnect.Release(pooled)
				return err
			}
			c.sock = sock
			return nil
		}
	}

	sock, err := session.Connect(host, port, c.username)
	if err != nil {
		return err
	}
	c.sock = sock
	return nil
}

// RegisterPacketHandler adds h for every id it should run on. Multiple
// handlers may share one id; all run, in registration order.
func (c *Client) RegisterPacketHandler(h PacketHandlerFunc, ids ...int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.handlers[id] = append(c.handlers[id], h)
	}
}

// State reports the underlying socket's connection phase.
func (c *Client) State() session.ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sock.State()
}

// Username reports the account name used to log in.
func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// SendChat sends a chat message as the logged-in player, rate-limited to
// avoid triggering a server-side chat-spam kick.
func (c *Client) SendChat(text string) error {
	msg := packets.ClientChat{Message: text, TimestampMS: uint64(time.Now().UnixMilli())}
	return c.send(c.chatChain, "ClientChat", packets.IDClientChat, msg.Encode())
}

// Respawn sends the client command to respawn after death.
func (c *Client) Respawn() error {
	cmd := packets.ClientCommand{Action: packets.ClientCommandPerformRespawn}
	return c.send(c.plainChain, "ClientCommand", packets.IDClientCommand, cmd.Encode())
}

// Disconnect closes the underlying socket. DisconnectEvent is emitted by
// Start once the closed connection surfaces as a receive error on the main
// loop, not by Disconnect itself — there is exactly one place that emits
// it, regardless of whether the disconnect was requested or encountered.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.Disconnect()
}

func (c *Client) send(chain middleware.SendFunc, name string, id int32, body []byte) error {
	return chain(context.Background(), &middleware.OutboundPacket{Name: name, ID: id, Body: body})
}

func (c *Client) rawSend(ctx context.Context, pkt *middleware.OutboundPacket) error {
	return c.currentSock().Send(pkt.ID, pkt.Body)
}

// currentSock snapshots the socket pointer under the shared RWMutex. Every
// read of c.sock outside of Reconnect/EnableReconnect (which hold the write
// lock while swapping it) must go through this helper instead of touching
// the field directly, so Start's main loop and rawSend agree on the same
// locking discipline.
func (c *Client) currentSock() *session.Socket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sock
}

// Start runs the main loop: drain and dispatch queued events, then poll the
// socket for one frame and run its registered handlers. Blocks until the
// socket reports an error (including a clean Disconnect), at which point it
// emits DisconnectEvent and returns the triggering error.
func (c *Client) Start() error {
	for {
		c.events.dispatchAll(c)

		frame, err := c.currentSock().ReceiveNonBlocking()
		if err == protocol.ErrNoData {
			time.Sleep(session.PollInterval)
			continue
		}
		if err != nil {
			log.Printf("client: error receiving packet: %v", err)
			EmitNow(c, DisconnectEvent{Err: err})
			return err
		}

		c.handlePacket(frame)
	}
}

func (c *Client) handlePacket(frame *protocol.Frame) {
	c.mu.RLock()
	handlers := append([]PacketHandlerFunc(nil), c.handlers[frame.ID]...)
	c.mu.RUnlock()

	for _, h := range handlers {
		h(c, frame)
	}
}

