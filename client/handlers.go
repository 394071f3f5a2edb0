package client

import (
	"log"

	"miners-go/packets"
	"miners-go/protocol"
	"miners-go/session"
)

// registerBuiltinHandlers wires the handlers every connected client needs
// regardless of what the caller subscribes to: keep-alive echo, death
// notification, and chat message decoding. Grounded on the original
// client's KeepAliveHandler/DeathHandler/ChatHandler.
func (c *Client) registerBuiltinHandlers() {
	c.RegisterPacketHandler(handleKeepAlive, packets.IDKeepAliveIn)
	c.RegisterPacketHandler(handleDeath, packets.IDDeath)
	c.RegisterPacketHandler(handleChatPlayer, packets.IDChatPlayer)
	c.RegisterPacketHandler(handleChatSystem, packets.IDChatSystem)
}

// handleKeepAlive answers the server's keep-alive ping with the same token
// under the serverbound id, and emits KeepAlivePacketEvent.
func handleKeepAlive(c *Client, frame *protocol.Frame) {
	if c.State() != session.StatePlay {
		return
	}

	ka := packets.DecodeKeepAlive(frame)

	log.Printf("client: keep alive received: %d", ka.Token)
	if err := c.send(c.plainChain, "KeepAlive", packets.IDKeepAliveOut, ka.Encode()); err != nil {
		log.Printf("client: failed to echo keep alive: %v", err)
	}

	Emit(c, KeepAlivePacketEvent{ID: ka.Token})
}

// handleDeath decodes the death packet and emits DeathEvent.
func handleDeath(c *Client, frame *protocol.Frame) {
	if c.State() != session.StatePlay {
		return
	}

	death := packets.DecodeDeath(frame)

	log.Printf("client: death packet received: killer=%d message=%s", death.KillerID, death.Message)
	Emit(c, DeathEvent{})
}

// handleChatPlayer decodes a player chat message (0x33) and emits
// ChatMessageEvent.
func handleChatPlayer(c *Client, frame *protocol.Frame) {
	if c.State() != session.StatePlay {
		return
	}

	msg, err := packets.DecodeChatPlayer(frame)
	if err != nil {
		log.Printf("client: malformed player chat packet: %v", err)
		return
	}

	log.Printf("client: chat message received: %s", msg.PlainMessage)
	Emit(c, ChatMessageEvent{Message: msg})
}

// handleChatSystem decodes a system chat message (0x62) and emits
// ChatMessageEvent.
func handleChatSystem(c *Client, frame *protocol.Frame) {
	if c.State() != session.StatePlay {
		return
	}

	msg, err := packets.DecodeChatSystem(frame)
	if err != nil {
		log.Printf("client: malformed system chat packet: %v", err)
		return
	}

	log.Printf("client: system message received: %s", msg.PlainMessage)
	Emit(c, ChatMessageEvent{Message: msg})
}
