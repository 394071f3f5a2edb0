package packets

import (
	"testing"

	"github.com/google/uuid"

	"miners-go/buffer"
	"miners-go/nbt"
	"miners-go/protocol"
)

func frameFromBody(id int32, body *buffer.Buffer) *protocol.Frame {
	return &protocol.Frame{ID: id, Body: body}
}

func TestHandshakeEncode(t *testing.T) {
	h := Handshake{ProtocolVersion: 760, ServerAddress: "localhost", ServerPort: 25565, NextState: NextStateLogin}
	buf := buffer.FromBytes(h.Encode())
	if v := buf.ReadVarInt(); v != 760 {
		t.Errorf("ProtocolVersion = %d", v)
	}
	if s := buf.ReadString(); s != "localhost" {
		t.Errorf("ServerAddress = %q", s)
	}
	if p := buf.ReadUShort(); p != 25565 {
		t.Errorf("ServerPort = %d", p)
	}
	if n := buf.ReadVarInt(); n != NextStateLogin {
		t.Errorf("NextState = %d", n)
	}
}

func TestLoginStartEncode(t *testing.T) {
	l := LoginStart{Username: "tester"}
	buf := buffer.FromBytes(l.Encode())
	if s := buf.ReadString(); s != "tester" {
		t.Errorf("Username = %q", s)
	}
	if buf.ReadBool() {
		t.Error("has_sig_data must be false")
	}
	if buf.ReadBool() {
		t.Error("has_uuid must be false")
	}
}

func TestDecodeLoginSuccessHighFirstUUID(t *testing.T) {
	id := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	buf := buffer.New()
	buf.WriteUUID(id)
	buf.WriteString("tester")
	buf.WriteVarInt(1)
	buf.WriteString("textures")
	buf.WriteString("base64value")
	buf.WriteBool(true)
	buf.WriteString("sig")

	ls := DecodeLoginSuccess(frameFromBody(IDLoginSuccess, buf))
	if ls.UUID != id {
		t.Errorf("UUID = %s, want %s", ls.UUID, id)
	}
	if ls.Username != "tester" {
		t.Errorf("Username = %q", ls.Username)
	}
	if len(ls.Properties) != 1 || ls.Properties[0].Name != "textures" || !ls.Properties[0].HasSig {
		t.Errorf("Properties = %+v", ls.Properties)
	}
}

func TestDecodeSetCompression(t *testing.T) {
	buf := buffer.New()
	buf.WriteVarInt(256)
	got := DecodeSetCompression(frameFromBody(IDSetCompression, buf))
	if got != 256 {
		t.Errorf("threshold = %d, want 256", got)
	}
}

func TestDecodeStatusResponse(t *testing.T) {
	json := `{"version":{"name":"1.19.2","protocol":760},"players":{"max":20,"online":1},"description":{"text":"hello"}}`
	buf := buffer.New()
	buf.WriteString(json)
	sr, err := DecodeStatusResponse(frameFromBody(IDStatusResponse, buf))
	if err != nil {
		t.Fatalf("DecodeStatusResponse: %v", err)
	}
	if sr.Version.Protocol != 760 {
		t.Errorf("Version.Protocol = %d, want 760", sr.Version.Protocol)
	}
	if sr.Players.Max != 20 || sr.Players.Online != 1 {
		t.Errorf("Players = %+v", sr.Players)
	}
	if sr.Description.Text != "hello" {
		t.Errorf("Description.Text = %q", sr.Description.Text)
	}
}

func TestDecodeLoginPlayWithRegistryAndDeathLocation(t *testing.T) {
	buf := buffer.New()
	buf.WriteInt(42)           // entity id
	buf.WriteBool(false)       // hardcore
	buf.WriteByte(0)           // gamemode
	buf.WriteByte(byte(int8(-1))) // previous gamemode
	buf.WriteVarInt(1)
	buf.WriteString("minecraft:overworld")
	nbt.Encode(buf, "", nbt.Value{Tag: nbt.TagCompound, Compound: map[string]nbt.Value{
		"dimension_type": {Tag: nbt.TagString, Str: "minecraft:dimension_type"},
	}})
	buf.WriteString("minecraft:overworld")
	buf.WriteString("minecraft:overworld")
	buf.WriteULong(123456789)
	buf.WriteVarInt(20)
	buf.WriteVarInt(10)
	buf.WriteVarInt(10)
	buf.WriteBool(false)
	buf.WriteBool(true)
	buf.WriteBool(false)
	buf.WriteBool(false)
	buf.WriteBool(true) // has_death_loc
	buf.WriteString("minecraft:overworld")
	buf.WriteLong(98765)

	lp, err := DecodeLoginPlay(frameFromBody(IDLoginPlay, buf))
	if err != nil {
		t.Fatalf("DecodeLoginPlay: %v", err)
	}
	if lp.EntityID != 42 {
		t.Errorf("EntityID = %d", lp.EntityID)
	}
	if len(lp.DimensionNames) != 1 || lp.DimensionNames[0] != "minecraft:overworld" {
		t.Errorf("DimensionNames = %v", lp.DimensionNames)
	}
	if lp.RegistryCodec.Tag != nbt.TagCompound {
		t.Errorf("RegistryCodec.Tag = %v", lp.RegistryCodec.Tag)
	}
	if lp.DeathLocation == nil || lp.DeathLocation.Position != 98765 {
		t.Errorf("DeathLocation = %+v", lp.DeathLocation)
	}
}

func TestKeepAliveEchoesSameBody(t *testing.T) {
	buf := buffer.New()
	buf.WriteLong(42)
	ka := DecodeKeepAlive(frameFromBody(IDKeepAliveIn, buf))
	if ka.Token != 42 {
		t.Fatalf("Token = %d, want 42", ka.Token)
	}
	echoed := ka.Encode()
	want := buffer.New()
	want.WriteLong(42)
	if string(echoed) != string(want.Bytes()) {
		t.Errorf("echoed bytes mismatch")
	}
}

func TestDecodeDeath(t *testing.T) {
	buf := buffer.New()
	buf.WriteVarInt(7)
	buf.WriteInt(9)
	buf.WriteString("blew up")
	d := DecodeDeath(frameFromBody(IDDeath, buf))
	if d.PlayerID != 7 || d.KillerID != 9 || d.Message != "blew up" {
		t.Errorf("Death = %+v", d)
	}
}

func TestDecodeChatSystem(t *testing.T) {
	buf := buffer.New()
	buf.WriteString(`{"text":"hello world"}`)
	cm, err := DecodeChatSystem(frameFromBody(IDChatSystem, buf))
	if err != nil {
		t.Fatalf("DecodeChatSystem: %v", err)
	}
	if cm.Source.Kind != ChatSourceSystem {
		t.Errorf("Source.Kind = %v", cm.Source.Kind)
	}
	if cm.PlainMessage != "hello world" {
		t.Errorf("PlainMessage = %q", cm.PlainMessage)
	}
	if cm.Formatted.Color != defaultChatColor {
		t.Errorf("Color default = %q", cm.Formatted.Color)
	}
}

func TestDecodeChatPlayerSkipsSignaturesAndComparesSourceByUUID(t *testing.T) {
	sender := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	buf := buffer.New()
	buf.WriteBool(true)
	buf.WriteVarInt(3)
	buf.WriteBytes([]byte{1, 2, 3})
	buf.WriteUUID(sender)
	buf.WriteVarInt(2)
	buf.WriteBytes([]byte{9, 9})
	buf.WriteString(`{"text":"hi"}`)

	cm, err := DecodeChatPlayer(frameFromBody(IDChatPlayer, buf))
	if err != nil {
		t.Fatalf("DecodeChatPlayer: %v", err)
	}
	if cm.Source.Kind != ChatSourcePlayer || cm.Source.PlayerUUID != sender {
		t.Errorf("Source = %+v", cm.Source)
	}

	other := ChatSource{Kind: ChatSourcePlayer, PlayerUUID: sender}
	if !cm.Source.Equal(other) {
		t.Error("expected sources with the same UUID to compare equal")
	}
	different := ChatSource{Kind: ChatSourcePlayer, PlayerUUID: uuid.Nil}
	if cm.Source.Equal(different) {
		t.Error("expected sources with different UUIDs to compare unequal")
	}
}

func TestClientChatEncodeZeroesUnusedFields(t *testing.T) {
	c := ClientChat{Message: "hi", TimestampMS: 1000}
	buf := buffer.FromBytes(c.Encode())
	if s := buf.ReadString(); s != "hi" {
		t.Errorf("Message = %q", s)
	}
	if ts := buf.ReadULong(); ts != 1000 {
		t.Errorf("TimestampMS = %d", ts)
	}
	if salt := buf.ReadLong(); salt != 0 {
		t.Errorf("salt = %d, want 0", salt)
	}
	if sigLen := buf.ReadVarInt(); sigLen != 0 {
		t.Errorf("sig_len = %d, want 0", sigLen)
	}
	if buf.ReadBool() {
		t.Error("signed_preview must be false")
	}
	if n := buf.ReadVarInt(); n != 0 {
		t.Errorf("prev_messages_count = %d, want 0", n)
	}
	if buf.ReadBool() {
		t.Error("has_last_message must be false")
	}
}

func TestClientCommandEncode(t *testing.T) {
	c := ClientCommand{Action: ClientCommandPerformRespawn}
	buf := buffer.FromBytes(c.Encode())
	if a := buf.ReadVarInt(); a != 0 {
		t.Errorf("Action = %d, want 0", a)
	}
}
