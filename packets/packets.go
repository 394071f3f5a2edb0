// Package packets declares the per-type encoders/decoders for every packet
// this client sends or receives, plus the small number of supporting value
// shapes (status JSON, formatted chat, death location) those packets carry.
//
// Each packet type owns its own Encode (producing a body ready for
// protocol.WriteFrame) or decode-from-Frame constructor; there is no shared
// envelope type, since the packets in scope have no uniform shape beyond
// "an id and some fields" (SPEC_FULL.md keeps this but nothing upstream of
// it needs a generic Packet struct to hold onto).
package packets

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"miners-go/buffer"
	"miners-go/nbt"
	"miners-go/protocol"
)

// Packet ids, grouped by connection phase.
const (
	IDHandshake = 0x00

	IDStatusRequest  = 0x00
	IDStatusResponse = 0x00

	IDLoginStart     = 0x00
	IDLoginSuccess   = 0x02
	IDSetCompression = 0x03

	IDLoginPlay     = 0x25
	IDKeepAliveIn   = 0x20
	IDKeepAliveOut  = 0x12
	IDDeath         = 0x36
	IDChatPlayer    = 0x33
	IDChatSystem    = 0x62
	IDClientChat    = 0x05
	IDClientCommand = 0x07
)

// NextState values carried in the Handshake packet.
const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)

// Handshake is the first packet sent on every connection, announcing the
// protocol version and which phase to enter next.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

// Encode serializes the handshake body (the frame codec adds the id).
func (h Handshake) Encode() []byte {
	buf := buffer.New()
	buf.WriteVarInt(h.ProtocolVersion)
	buf.WriteString(h.ServerAddress)
	buf.WriteUShort(h.ServerPort)
	buf.WriteVarInt(h.NextState)
	return buf.Bytes()
}

// EncodeStatusRequest returns the empty body for the Status-phase request.
func EncodeStatusRequest() []byte {
	return nil
}

// StatusResponse is the single JSON payload describing a server's MOTD,
// player counts, and negotiated protocol version.
type StatusResponse struct {
	Version     StatusVersion `json:"version"`
	Players     StatusPlayers `json:"players"`
	Description StatusDesc    `json:"description"`
	Favicon     string        `json:"favicon,omitempty"`
	// EnforcesSecureChat is a pointer so "absent" and "false" are
	// distinguishable, matching the field's optional-bool shape on the wire.
	EnforcesSecureChat *bool `json:"enforcesSecureChat,omitempty"`
}

type StatusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type StatusPlayers struct {
	Max    int32          `json:"max"`
	Online int32          `json:"online"`
	Sample []StatusPlayer `json:"sample,omitempty"`
}

type StatusPlayer struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type StatusDesc struct {
	Text string `json:"text"`
}

// DecodeStatusResponse reads the length-prefixed JSON string and unmarshals it.
func DecodeStatusResponse(frame *protocol.Frame) (StatusResponse, error) {
	raw := frame.Body.ReadString()
	var sr StatusResponse
	if err := json.Unmarshal([]byte(raw), &sr); err != nil {
		return StatusResponse{}, fmt.Errorf("packets: decoding status response: %w", err)
	}
	return sr, nil
}

// LoginStart begins the Login phase. has_sig_data and has_uuid are always
// false for this client (no Mojang session authentication is implemented).
type LoginStart struct {
	Username string
}

func (l LoginStart) Encode() []byte {
	buf := buffer.New()
	buf.WriteString(l.Username)
	buf.WriteBool(false) // has_sig_data
	buf.WriteBool(false) // has_uuid
	return buf.Bytes()
}

// LoginSuccessProperty is one entry of a login success's property list
// (e.g. a signed skin/cape texture).
type LoginSuccessProperty struct {
	Name      string
	Value     string
	Signature string
	HasSig    bool
}

// LoginSuccess carries the authoritative UUID and username the server has
// assigned this connection, plus any signed properties.
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []LoginSuccessProperty
}

// DecodeLoginSuccess reads the UUID high-64-first (SPEC_FULL.md §9),
// followed by the username and property list.
func DecodeLoginSuccess(frame *protocol.Frame) LoginSuccess {
	id := frame.Body.ReadUUID()
	username := frame.Body.ReadString()
	n := frame.Body.ReadVarInt()
	props := make([]LoginSuccessProperty, n)
	for i := range props {
		name := frame.Body.ReadString()
		value := frame.Body.ReadString()
		hasSig := frame.Body.ReadBool()
		var sig string
		if hasSig {
			sig = frame.Body.ReadString()
		}
		props[i] = LoginSuccessProperty{Name: name, Value: value, Signature: sig, HasSig: hasSig}
	}
	return LoginSuccess{UUID: id, Username: username, Properties: props}
}

// DecodeSetCompression reads the new compression threshold.
func DecodeSetCompression(frame *protocol.Frame) int32 {
	return frame.Body.ReadVarInt()
}

// DeathLocation is the optional dimension+position pair LoginPlay carries
// when the player last died somewhere.
type DeathLocation struct {
	Dimension string
	Position  int64
}

// LoginPlay is the join-game packet that ends the Login phase.
type LoginPlay struct {
	EntityID            int32
	IsHardcore          bool
	Gamemode            byte
	PreviousGamemode    int8
	DimensionNames      []string
	RegistryCodec       nbt.Value
	DimensionType       string
	DimensionName       string
	HashedSeed          uint64
	MaxPlayers          int32
	ViewDistance        int32
	SimulationDistance  int32
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	IsDebug             bool
	IsFlat              bool
	DeathLocation       *DeathLocation
}

// DecodeLoginPlay reads the join-game packet field by field, including the
// embedded dimension registry NBT tree.
func DecodeLoginPlay(frame *protocol.Frame) (LoginPlay, error) {
	body := frame.Body
	lp := LoginPlay{}
	lp.EntityID = body.ReadInt()
	lp.IsHardcore = body.ReadBool()
	lp.Gamemode = body.ReadByte()
	lp.PreviousGamemode = int8(body.ReadByte())

	dimCount := body.ReadVarInt()
	lp.DimensionNames = make([]string, dimCount)
	for i := range lp.DimensionNames {
		lp.DimensionNames[i] = body.ReadString()
	}

	registryCodec, err := nbt.Decode(body)
	if err != nil {
		return LoginPlay{}, fmt.Errorf("packets: decoding registry codec NBT: %w", err)
	}
	lp.RegistryCodec = registryCodec

	lp.DimensionType = body.ReadString()
	lp.DimensionName = body.ReadString()
	lp.HashedSeed = body.ReadULong()
	lp.MaxPlayers = body.ReadVarInt()
	lp.ViewDistance = body.ReadVarInt()
	lp.SimulationDistance = body.ReadVarInt()
	lp.ReducedDebugInfo = body.ReadBool()
	lp.EnableRespawnScreen = body.ReadBool()
	lp.IsDebug = body.ReadBool()
	lp.IsFlat = body.ReadBool()

	if body.ReadBool() {
		lp.DeathLocation = &DeathLocation{
			Dimension: body.ReadString(),
			Position:  body.ReadLong(),
		}
	}

	return lp, nil
}

// KeepAlive is a 64-bit token echoed back verbatim with a different id.
type KeepAlive struct {
	Token int64
}

func DecodeKeepAlive(frame *protocol.Frame) KeepAlive {
	return KeepAlive{Token: frame.Body.ReadLong()}
}

// Encode produces the outbound (id 0x12) response body: the same token.
func (k KeepAlive) Encode() []byte {
	buf := buffer.New()
	buf.WriteLong(k.Token)
	return buf.Bytes()
}

// Death reports that the player has died, with the killer entity id and a
// plain-text death message.
type Death struct {
	PlayerID int32
	KillerID int32
	Message  string
}

func DecodeDeath(frame *protocol.Frame) Death {
	return Death{
		PlayerID: frame.Body.ReadVarInt(),
		KillerID: frame.Body.ReadInt(),
		Message:  frame.Body.ReadString(),
	}
}

// FormattedChatMessage mirrors the Minecraft chat-component JSON shape.
// Every field defaults per the client's own rendering rules rather than
// failing to unmarshal when absent, matching how servers omit defaults.
type FormattedChatMessage struct {
	Text          string                 `json:"text"`
	Bold          bool                   `json:"bold,omitempty"`
	Italic        bool                   `json:"italic,omitempty"`
	Underlined    bool                   `json:"underlined,omitempty"`
	Strikethrough bool                   `json:"strikethrough,omitempty"`
	Obfuscated    bool                   `json:"obfuscated,omitempty"`
	Font          string                 `json:"font,omitempty"`
	Color         string                 `json:"color,omitempty"`
	Extra         []FormattedChatMessage `json:"extra,omitempty"`
}

const (
	defaultChatFont  = "minecraft:uniform"
	defaultChatColor = "minecraft:white"
)

// ParseFormattedChatMessage unmarshals raw chat-component JSON, filling in
// the font/color defaults the server is allowed to omit.
func ParseFormattedChatMessage(raw string) (FormattedChatMessage, error) {
	msg := FormattedChatMessage{Font: defaultChatFont, Color: defaultChatColor}
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return FormattedChatMessage{}, fmt.Errorf("packets: decoding chat message: %w", err)
	}
	if msg.Font == "" {
		msg.Font = defaultChatFont
	}
	if msg.Color == "" {
		msg.Color = defaultChatColor
	}
	return msg, nil
}

// FromPlainChatText builds a FormattedChatMessage carrying only plain text, used
// when a legacy/unsigned player message has no formatting to parse.
func FromPlainChatText(text string) FormattedChatMessage {
	return FormattedChatMessage{Text: text, Font: defaultChatFont, Color: defaultChatColor}
}

// ChatSourceKind distinguishes a player-authored message from a
// system-authored one.
type ChatSourceKind int

const (
	ChatSourceSystem ChatSourceKind = iota
	ChatSourcePlayer
)

// ChatSource identifies who sent a chat message. Equality is by UUID value
// (SPEC_FULL.md §9), never by Go identity.
type ChatSource struct {
	Kind       ChatSourceKind
	PlayerUUID uuid.UUID
}

// Equal compares two sources by kind and, for player sources, by UUID value.
func (s ChatSource) Equal(other ChatSource) bool {
	if s.Kind != other.Kind {
		return false
	}
	if s.Kind == ChatSourcePlayer {
		return s.PlayerUUID == other.PlayerUUID
	}
	return true
}

// ChatMessage is the normalized shape both Chat packet variants decode
// into, regardless of wire layout differences between them.
type ChatMessage struct {
	Source       ChatSource
	Formatted    FormattedChatMessage
	PlainMessage string
}

// DecodeChatPlayer decodes a Player Message packet (id 0x33): an optional
// signature (skipped), the sender's UUID, a header signature (skipped),
// and the JSON message body. Trailing fields this client does not use are
// left unread.
func DecodeChatPlayer(frame *protocol.Frame) (ChatMessage, error) {
	body := frame.Body
	if body.ReadBool() {
		sigLen := body.ReadVarInt()
		body.ReadBytes(int(sigLen))
	}
	sender := body.ReadUUID()
	headerSigLen := body.ReadVarInt()
	body.ReadBytes(int(headerSigLen))
	raw := body.ReadString()

	formatted, err := ParseFormattedChatMessage(raw)
	if err != nil {
		// Player messages are sometimes sent as a bare string, not JSON;
		// fall back to treating it as plain text rather than failing.
		formatted = FromPlainChatText(raw)
	}
	return ChatMessage{
		Source:       ChatSource{Kind: ChatSourcePlayer, PlayerUUID: sender},
		Formatted:    formatted,
		PlainMessage: formatted.Text,
	}, nil
}

// DecodeChatSystem decodes a System Message packet (id 0x62): a single
// JSON message body.
func DecodeChatSystem(frame *protocol.Frame) (ChatMessage, error) {
	raw := frame.Body.ReadString()
	formatted, err := ParseFormattedChatMessage(raw)
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{
		Source:       ChatSource{Kind: ChatSourceSystem},
		Formatted:    formatted,
		PlainMessage: formatted.Text,
	}, nil
}

// ClientChat is the outbound (id 0x05) chat-send packet. Every field past
// the message and its timestamp is zeroed/false — this client never implements chat
// signing previews or acknowledgment tracking.
type ClientChat struct {
	Message     string
	TimestampMS uint64
}

func (c ClientChat) Encode() []byte {
	buf := buffer.New()
	buf.WriteString(c.Message)
	buf.WriteULong(c.TimestampMS)
	buf.WriteLong(0)     // salt
	buf.WriteVarInt(0)   // sig_len
	buf.WriteBool(false) // signed_preview
	buf.WriteVarInt(0)   // prev_messages_count
	buf.WriteBool(false) // has_last_message
	return buf.Bytes()
}

// ClientCommandAction selects which command the server should run on our
// behalf.
type ClientCommandAction int32

const (
	ClientCommandPerformRespawn ClientCommandAction = 0
	ClientCommandRequestStats   ClientCommandAction = 1
)

// ClientCommand is the outbound (id 0x07) packet used to respawn or
// request statistics.
type ClientCommand struct {
	Action ClientCommandAction
}

func (c ClientCommand) Encode() []byte {
	buf := buffer.New()
	buf.WriteVarInt(int32(c.Action))
	return buf.Bytes()
}
