package helper

import (
	"testing"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

func TestChatAddress(t *testing.T) {
	if got := ChatAddress("5511999999999"); got != "5511999999999@c.us" {
		t.Errorf("got %q", got)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    types.JID
		wantErr bool
	}{
		{"legacy suffix", "5511999999999@c.us", types.NewJID("5511999999999", types.DefaultUserServer), false},
		{"default server", "5511999999999@s.whatsapp.net", types.NewJID("5511999999999", types.DefaultUserServer), false},
		{"group", "1203630@g.us", types.NewJID("1203630", types.GroupServer), false},
		{"missing number", "@c.us", types.JID{}, true},
		{"empty", "", types.JID{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.address)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddressFromJID(t *testing.T) {
	jid := types.JID{User: "5511999999999", Device: 12, Server: types.DefaultUserServer}

	if got := AddressFromJID(jid); got != "5511999999999@c.us" {
		t.Errorf("got %q", got)
	}
}

func TestSenderJID(t *testing.T) {
	phone := types.JID{User: "5511999999999", Server: types.DefaultUserServer}
	lid := types.JID{User: "123456789012345", Server: types.HiddenUserServer}

	tests := []struct {
		name        string
		sender, alt types.JID
		want        string
	}{
		{"phone sender", phone, types.JID{}, "5511999999999@c.us"},
		{"lid with phone alt", lid, phone, "5511999999999@c.us"},
		{"lid without alt", lid, types.JID{}, "123456789012345@lid"},
		{"lid with lid alt", lid, lid, "123456789012345@lid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddressFromJID(SenderJID(tt.sender, tt.alt)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractPhoneFromJID(t *testing.T) {
	tests := map[string]string{
		"6285148107612:43@s.whatsapp.net": "6285148107612",
		"5511999999999@c.us":              "5511999999999",
		"5511999999999":                   "5511999999999",
	}
	for in, want := range tests {
		if got := ExtractPhoneFromJID(in); got != want {
			t.Errorf("ExtractPhoneFromJID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMessageText(t *testing.T) {
	tests := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{"nil", nil, ""},
		{"conversation", &waE2E.Message{Conversation: proto.String("oi")}, "oi"},
		{"extended", &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("link")}}, "link"},
		{"image caption", &waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("foto")}}, "foto"},
		{"ephemeral", &waE2E.Message{EphemeralMessage: &waE2E.FutureProofMessage{Message: &waE2E.Message{Conversation: proto.String("tchau")}}}, "tchau"},
		{"sticker", &waE2E.Message{StickerMessage: &waE2E.StickerMessage{}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageText(tt.msg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextMessage(t *testing.T) {
	if got := TextMessage("hi").GetConversation(); got != "hi" {
		t.Errorf("got %q", got)
	}
}
