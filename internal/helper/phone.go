package helper

import (
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// AddressSuffix is appended to a bare phone number to address a user chat.
const AddressSuffix = "@" + types.LegacyUserServer

// ChatAddress turns "5511999999999" into "5511999999999@c.us".
func ChatAddress(numero string) string {
	return numero + AddressSuffix
}

// ParseAddress converts a chat address into a JID the network accepts.
// Legacy c.us addresses are mapped onto s.whatsapp.net.
func ParseAddress(address string) (types.JID, error) {
	jid, err := types.ParseJID(address)
	if err != nil {
		return types.JID{}, err
	}
	if jid.User == "" {
		return types.JID{}, fmt.Errorf("missing user in address %q", address)
	}
	if jid.Server == types.LegacyUserServer {
		jid.Server = types.DefaultUserServer
	}
	return jid, nil
}

// AddressFromJID renders a user JID in the c.us address form used by the API.
func AddressFromJID(jid types.JID) string {
	jid = jid.ToNonAD()
	if jid.Server == types.DefaultUserServer {
		jid.Server = types.LegacyUserServer
	}
	return jid.String()
}

// SenderJID prefers the phone-number JID when the network identifies the
// sender by a hidden LID.
func SenderJID(sender, alt types.JID) types.JID {
	if sender.Server == types.HiddenUserServer && alt.User != "" && alt.Server == types.DefaultUserServer {
		return alt
	}
	return sender
}

func ExtractPhoneFromJID(jid string) string {
	// "6285148107612:43@s.whatsapp.net" -> "6285148107612"
	atSplit := strings.SplitN(jid, "@", 2)
	colonSplit := strings.SplitN(atSplit[0], ":", 2)
	return colonSplit[0]
}
