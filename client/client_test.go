package client

import (
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"miners-go/buffer"
	"miners-go/packets"
	"miners-go/protocol"
)

// startFakeServer runs a two-connection fake Minecraft server identical in
// shape to session's own fixture: a status probe connection followed by a
// login connection, then (optionally) further frames written by after
// once the login sequence completes.
func startFakeServer(t *testing.T, loginUUID uuid.UUID, after func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		probeConn, err := ln.Accept()
		if err != nil {
			return
		}
		func() {
			defer probeConn.Close()
			if _, err := protocol.ReadFrame(probeConn, 0); err != nil {
				return
			}
			if _, err := protocol.ReadFrame(probeConn, 0); err != nil {
				return
			}
			sr := `{"version":{"name":"1.19.2","protocol":760},"players":{"max":20,"online":0},"description":{"text":"test"}}`
			body := stringBuffer(sr)
			protocol.WriteFrame(probeConn, packets.IDStatusResponse, body, 0)
		}()

		loginConn, err := ln.Accept()
		if err != nil {
			return
		}
		defer loginConn.Close()
		if _, err := protocol.ReadFrame(loginConn, 0); err != nil {
			return
		}
		if _, err := protocol.ReadFrame(loginConn, 0); err != nil {
			return
		}

		protocol.WriteFrame(loginConn, packets.IDSetCompression, varIntBuffer(256), 0)
		protocol.WriteFrame(loginConn, packets.IDLoginSuccess, loginSuccessBuffer(loginUUID, "tester"), 256)
		protocol.WriteFrame(loginConn, packets.IDLoginPlay, minimalLoginPlayBuffer(), 256)

		if after != nil {
			after(loginConn)
		}
	}()

	return ln.Addr().String()
}

func dialFakeServer(t *testing.T, addr string) Config {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("splitting addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port: %v", err)
	}
	return Config{Username: "tester", Host: host, Port: uint16(port)}
}

func TestNewLogsInAndQueuesSpawnEvent(t *testing.T) {
	loginUUID := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	addr := startFakeServer(t, loginUUID, nil)

	c, err := New(dialFakeServer(t, addr))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Disconnect()

	var spawned sync.WaitGroup
	spawned.Add(1)
	Once(c, func(c *Client, e SpawnEvent) {
		spawned.Done()
	})

	done := make(chan struct{})
	go func() {
		c.Start()
		close(done)
	}()

	waitOrFail(t, &spawned, "SpawnEvent was not dispatched")
	c.Disconnect()
	<-done
}

func TestKeepAliveIsEchoedWithServerBoundID(t *testing.T) {
	loginUUID := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

	var wg sync.WaitGroup
	wg.Add(1)
	addr := startFakeServer(t, loginUUID, func(conn net.Conn) {
		protocol.WriteFrame(conn, packets.IDKeepAliveIn, longBuffer(42), 256)

		frame, err := protocol.ReadFrame(conn, 256)
		if err != nil {
			t.Errorf("reading keep alive echo: %v", err)
			return
		}
		if frame.ID != packets.IDKeepAliveOut {
			t.Errorf("echoed id = 0x%x, want 0x%x", frame.ID, packets.IDKeepAliveOut)
		}
		wg.Done()
	})

	c, err := New(dialFakeServer(t, addr))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Disconnect()

	go c.Start()
	waitOrFail(t, &wg, "keep alive was not echoed back")
}

func TestKeepAliveEmitsEvent(t *testing.T) {
	loginUUID := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")

	addr := startFakeServer(t, loginUUID, func(conn net.Conn) {
		protocol.WriteFrame(conn, packets.IDKeepAliveIn, longBuffer(99), 256)
		protocol.ReadFrame(conn, 256) // drain the echo so the loop doesn't block the test server
	})

	c, err := New(dialFakeServer(t, addr))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Disconnect()

	var wg sync.WaitGroup
	wg.Add(1)
	var seen int64
	Once(c, func(c *Client, e KeepAlivePacketEvent) {
		seen = e.ID
		wg.Done()
	})

	go c.Start()
	waitOrFail(t, &wg, "KeepAlivePacketEvent was not dispatched")
	if seen != 99 {
		t.Errorf("KeepAlivePacketEvent.ID = %d, want 99", seen)
	}
}

func TestRegisterPacketHandlerRunsForMatchingID(t *testing.T) {
	loginUUID := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	addr := startFakeServer(t, loginUUID, func(conn net.Conn) {
		protocol.WriteFrame(conn, packets.IDDeath, deathBuffer(), 256)
	})

	c, err := New(dialFakeServer(t, addr))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Disconnect()

	var wg sync.WaitGroup
	wg.Add(1)
	var gotID int32 = -1
	c.RegisterPacketHandler(func(c *Client, frame *protocol.Frame) {
		gotID = frame.ID
		wg.Done()
	}, packets.IDDeath)

	go c.Start()
	waitOrFail(t, &wg, "death packet handler did not run")
	if gotID != packets.IDDeath {
		t.Errorf("handled frame id = 0x%x, want 0x%x", gotID, packets.IDDeath)
	}
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup, msg string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal(msg)
	}
}

// --- wire-fixture helpers ---

func stringBuffer(s string) []byte {
	b := buffer.New()
	b.WriteString(s)
	return b.Bytes()
}

func varIntBuffer(v int32) []byte {
	b := buffer.New()
	b.WriteVarInt(v)
	return b.Bytes()
}

func longBuffer(v int64) []byte {
	b := buffer.New()
	b.WriteLong(v)
	return b.Bytes()
}

func deathBuffer() []byte {
	b := buffer.New()
	b.WriteVarInt(1)    // player id
	b.WriteInt(7)       // killer id
	b.WriteString("ouch")
	return b.Bytes()
}

func loginSuccessBuffer(id uuid.UUID, username string) []byte {
	b := buffer.New()
	b.WriteUUID(id)
	b.WriteString(username)
	b.WriteVarInt(0)
	return b.Bytes()
}

func minimalLoginPlayBuffer() []byte {
	b := buffer.New()
	b.WriteInt(1)
	b.WriteBool(false)
	b.WriteByte(0)
	b.WriteByte(0)
	b.WriteVarInt(1)
	b.WriteString("minecraft:overworld")
	b.WriteByte(0x0A)
	b.WriteUShort(0)
	b.WriteByte(0x00)
	b.WriteString("minecraft:overworld")
	b.WriteString("minecraft:overworld")
	b.WriteULong(0)
	b.WriteVarInt(20)
	b.WriteVarInt(10)
	b.WriteVarInt(10)
	b.WriteBool(false)
	b.WriteBool(true)
	b.WriteBool(false)
	b.WriteBool(false)
	b.WriteBool(false)
	return b.Bytes()
}
