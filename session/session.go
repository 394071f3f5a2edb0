// Package session owns the TCP stream and the four-phase connection state
// machine: it drives the short-lived status probe, the login handshake
// (registering protocol-phase handlers that are torn down on entry to
// Play), and exposes send/receive of decoded frames for the Play phase.
//
// Writes are serialized behind a single mutex so a client-level handler
// and the main loop can both call Send without interleaving frames on the
// wire — the same discipline the transport this is grounded on used to
// keep concurrent RPC callers from corrupting a shared connection.
package session

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"miners-go/handler"
	"miners-go/packets"
	"miners-go/protocol"
)

// ConnectionState is one of the four phases a Socket moves through, in
// strictly linear order: Handshake→{Status|Login}, Login→Play.
type ConnectionState int

const (
	StateHandshake ConnectionState = iota
	StateStatus
	StateLogin
	StatePlay
)

func (s ConnectionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateStatus:
		return "Status"
	case StateLogin:
		return "Login"
	case StatePlay:
		return "Play"
	default:
		return "Unknown"
	}
}

// LoginFailed wraps any error encountered during connect/login — bad
// state, I/O, or decode — into a single error surfaced to the caller.
type LoginFailed struct {
	Reason error
}

func (e *LoginFailed) Error() string {
	return fmt.Sprintf("session: login failed: %v", e.Reason)
}

func (e *LoginFailed) Unwrap() error { return e.Reason }

// Socket owns one TCP stream plus the negotiated state around it:
// connection state, compression threshold, protocol version, and the
// account UUID assigned on login success.
type Socket struct {
	conn                 net.Conn
	host                 string
	port                 uint16
	state                ConnectionState
	compressionThreshold int32
	protocolVersion      int32
	uuid                 uuid.UUID

	sending sync.Mutex
}

// Host reports the remote address the socket is connected to.
func (s *Socket) Host() string { return s.host }

// Port reports the remote port the socket is connected to.
func (s *Socket) Port() uint16 { return s.port }

// State reports the current connection phase.
func (s *Socket) State() ConnectionState { return s.state }

// UUID reports the account UUID assigned by LoginSuccess. Zero before login
// completes.
func (s *Socket) UUID() uuid.UUID { return s.uuid }

// ProtocolVersion reports the version recorded from the status probe.
func (s *Socket) ProtocolVersion() int32 { return s.protocolVersion }

// CompressionThreshold reports the currently active threshold (<= 0 means
// compression is disabled).
func (s *Socket) CompressionThreshold() int32 { return s.compressionThreshold }

// Connect performs the full two-phase dial: a short-lived status probe to
// record the server's protocol version, followed by the real login
// connection, run to completion (LoginPlay received) or failure.
func Connect(host string, port uint16, username string) (*Socket, error) {
	protocolVersion, err := probeProtocolVersion(host, port)
	if err != nil {
		return nil, &LoginFailed{Reason: err}
	}

	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, &LoginFailed{Reason: err}
	}

	return ConnectOverConn(conn, host, port, protocolVersion, username)
}

// ConnectOverConn drives the login handshake over an already-established
// connection instead of dialing one — the entry point for a reconnect that
// reuses a standby connection pulled from a ReconnectPool, skipping the
// dial latency Connect otherwise pays. The caller is responsible for
// knowing protocolVersion in advance (typically the version negotiated by
// the previous session against the same server).
func ConnectOverConn(conn net.Conn, host string, port uint16, protocolVersion int32, username string) (*Socket, error) {
	s := &Socket{
		conn:            conn,
		host:            host,
		port:            port,
		state:           StateHandshake,
		protocolVersion: protocolVersion,
	}

	if err := s.login(username); err != nil {
		conn.Close()
		return nil, &LoginFailed{Reason: err}
	}

	return s, nil
}

// probeProtocolVersion opens a short-lived Status-phase connection purely
// to read the server's advertised protocol version, then closes it. The
// real login connection is negotiated from scratch afterward.
func probeProtocolVersion(host string, port uint16) (int32, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	hs := packets.Handshake{
		ProtocolVersion: 0,
		ServerAddress:   host,
		ServerPort:      port,
		NextState:       packets.NextStateStatus,
	}
	if err := protocol.WriteFrame(conn, packets.IDHandshake, hs.Encode(), 0); err != nil {
		return 0, err
	}
	if err := protocol.WriteFrame(conn, packets.IDStatusRequest, packets.EncodeStatusRequest(), 0); err != nil {
		return 0, err
	}

	frame, err := protocol.ReadFrame(conn, 0)
	if err != nil {
		return 0, err
	}
	status, err := packets.DecodeStatusResponse(frame)
	if err != nil {
		return 0, err
	}
	return status.Version.Protocol, nil
}

// login drives the Login-phase handler loop: register the protocol-phase
// handlers (SetCompression, LoginSuccess, LoginPlay), send Handshake+
// LoginStart, and run until LoginPlay signals Exit or a handler fails.
func (s *Socket) login(username string) error {
	reg := handler.New()
	s.registerProtocolHandlers(reg)
	defer reg.UnregisterAll()

	hs := packets.Handshake{
		ProtocolVersion: s.protocolVersion,
		ServerAddress:   s.host,
		ServerPort:      s.port,
		NextState:       packets.NextStateLogin,
	}
	if err := s.Send(packets.IDHandshake, hs.Encode()); err != nil {
		return err
	}
	s.state = StateLogin

	ls := packets.LoginStart{Username: username}
	if err := s.Send(packets.IDLoginStart, ls.Encode()); err != nil {
		return err
	}

	for {
		frame, err := s.Receive()
		if err != nil {
			return err
		}
		outcome := reg.Handle(frame)
		if outcome.IsExit() {
			return nil
		}
		if err := outcome.Err(); err != nil {
			return err
		}
	}
}

// registerProtocolHandlers installs the three protocol-phase handlers that
// exist only for the duration of login.
func (s *Socket) registerProtocolHandlers(reg *handler.Registry) {
	reg.Register(packets.IDSetCompression, func(frame *protocol.Frame) handler.Outcome {
		if s.state != StateLogin {
			return handler.Fail(fmt.Errorf("session: SetCompression received outside Login state (state=%s)", s.state))
		}
		s.compressionThreshold = packets.DecodeSetCompression(frame)
		return handler.Continue()
	})

	reg.Register(packets.IDLoginSuccess, func(frame *protocol.Frame) handler.Outcome {
		if s.state != StateLogin {
			return handler.Fail(fmt.Errorf("session: LoginSuccess received outside Login state (state=%s)", s.state))
		}
		ls := packets.DecodeLoginSuccess(frame)
		s.uuid = ls.UUID
		s.state = StatePlay
		return handler.Continue()
	})

	reg.Register(packets.IDLoginPlay, func(frame *protocol.Frame) handler.Outcome {
		if s.state != StatePlay {
			return handler.Fail(fmt.Errorf("session: LoginPlay received outside Play state (state=%s)", s.state))
		}
		if _, err := packets.DecodeLoginPlay(frame); err != nil {
			return handler.Fail(err)
		}
		return handler.Exit()
	})
}

// Send encodes id+body via the frame codec at the current compression
// threshold and writes it to the stream. Safe for concurrent callers.
func (s *Socket) Send(id int32, body []byte) error {
	s.sending.Lock()
	defer s.sending.Unlock()
	return protocol.WriteFrame(s.conn, id, body, int(s.compressionThreshold))
}

// Receive performs one blocking read of a complete frame, surfacing a
// sniffed JSON error frame as a *protocol.FrameError when present.
func (s *Socket) Receive() (*protocol.Frame, error) {
	frame, err := protocol.ReadFrame(s.conn, int(s.compressionThreshold))
	if err != nil {
		return nil, err
	}
	return s.sniffOrReturn(frame)
}

// ReceiveNonBlocking performs a non-blocking peek-then-read; it returns
// protocol.ErrNoData (not a real error) when nothing is waiting.
func (s *Socket) ReceiveNonBlocking() (*protocol.Frame, error) {
	frame, err := protocol.TryReadFrame(s.conn, int(s.compressionThreshold))
	if err != nil {
		return nil, err
	}
	return s.sniffOrReturn(frame)
}

func (s *Socket) sniffOrReturn(frame *protocol.Frame) (*protocol.Frame, error) {
	if fe, ok := protocol.SniffError(frame.Body); ok {
		return nil, fe
	}
	return frame, nil
}

// Disconnect shuts the stream down in both directions.
func (s *Socket) Disconnect() error {
	return s.conn.Close()
}

// PollInterval is the idle sleep between non-blocking receive attempts
// used by the Client main loop (SPEC_FULL.md §5).
const PollInterval = 10 * time.Millisecond
