// ReconnectPool pre-dials standby TCP connections to candidate addresses so
// a dropped Client can grab a warm socket and replay login instead of
// paying DNS+TCP handshake latency before reconnecting.
//
// Adapted from the exclusive borrow/return ConnPool this is grounded on:
// the same buffered-channel FIFO and lazy-creation discipline, repurposed
// from "hand out one connection per RPC call" to "keep n sockets dialed
// ahead of time to one address, ready for Acquire callers to claim".
package session

import (
	"fmt"
	"net"
	"sync"
)

// ReconnectPool manages pre-dialed connections to a single address.
type ReconnectPool struct {
	mu       sync.Mutex
	conns    chan *PooledConn
	addr     string
	maxConns int
	curConns int
}

// PooledConn wraps a net.Conn with pool bookkeeping. Callers that hit an
// error on a pulled connection should mark it Unusable before returning it.
type PooledConn struct {
	net.Conn
	pool     *ReconnectPool
	unusable bool
}

// MarkUnusable flags the connection so Release closes it instead of
// returning it to the pool.
func (c *PooledConn) MarkUnusable() { c.unusable = true }

// NewReconnectPool creates an empty pool for addr with room for up to
// maxConns standby connections.
func NewReconnectPool(addr string, maxConns int) *ReconnectPool {
	return &ReconnectPool{
		conns:    make(chan *PooledConn, maxConns),
		addr:     addr,
		maxConns: maxConns,
	}
}

// Warm dials n additional standby connections and stores them for later
// use by Acquire. Once the pool's maxConns is reached it stops and returns
// an error; the connections dialed before that stay in the pool.
func (p *ReconnectPool) Warm(n int) error {
	for i := 0; i < n; i++ {
		conn, err := p.createNew()
		if err != nil {
			return err
		}
		p.conns <- conn
	}
	return nil
}

// Acquire returns a standby connection if one is warmed, or dials a fresh
// one if the pool has room, without blocking the caller waiting for a
// Warm to finish elsewhere.
func (p *ReconnectPool) Acquire() (*PooledConn, error) {
	select {
	case conn := <-p.conns:
		if conn.unusable {
			return p.createNew()
		}
		return conn, nil
	default:
		return p.createNew()
	}
}

// Release returns conn to the pool, or closes it if it was marked unusable.
func (p *ReconnectPool) Release(conn *PooledConn) {
	if conn.unusable {
		conn.Close()
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
		return
	}
	select {
	case p.conns <- conn:
	default:
		conn.Close()
		p.mu.Lock()
		p.curConns--
		p.mu.Unlock()
	}
}

// Close shuts down the pool, closing every standby connection it holds.
func (p *ReconnectPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.conns)
	for conn := range p.conns {
		conn.Close()
		p.curConns--
	}
	return nil
}

func (p *ReconnectPool) createNew() (*PooledConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.curConns >= p.maxConns {
		return nil, fmt.Errorf("session: reconnect pool for %s exhausted", p.addr)
	}

	netConn, err := net.Dial("tcp", p.addr)
	if err != nil {
		return nil, err
	}

	p.curConns++
	return &PooledConn{Conn: netConn, pool: p}, nil
}
