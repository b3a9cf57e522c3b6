package helper

import (
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"
)

// TextMessage builds a plain conversation message.
func TextMessage(body string) *waE2E.Message {
	return &waE2E.Message{
		Conversation: proto.String(body),
	}
}

// MessageText extracts the user-visible text of an inbound message.
// Media messages yield their caption; anything else yields "".
func MessageText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}

	switch {
	case msg.GetConversation() != "":
		return msg.GetConversation()
	case msg.GetExtendedTextMessage() != nil:
		return msg.GetExtendedTextMessage().GetText()
	case msg.GetImageMessage() != nil:
		return msg.GetImageMessage().GetCaption()
	case msg.GetVideoMessage() != nil:
		return msg.GetVideoMessage().GetCaption()
	case msg.GetDocumentMessage() != nil:
		return msg.GetDocumentMessage().GetCaption()
	case msg.GetEphemeralMessage() != nil:
		return MessageText(msg.GetEphemeralMessage().GetMessage())
	}
	return ""
}
