package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Server replies are bare JSON strings on the wire.
var (
	ReplySuccess        = []byte(`"Success"`)
	ReplyInvalidCommand = []byte(`"InvalidCommand"`)
	ReplyCommandFailed  = []byte(`"CommandFailed"`)
)

// ErrNotChatMessage is returned when a frame decodes as JSON but is not a
// ChatMessage envelope.
var ErrNotChatMessage = errors.New("not a chat message")

// ChatMessage represents a message broadcast to channel subscribers
type ChatMessage struct {
	HubID     string `json:"hub_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
}

// chatMessageEnvelope is the externally tagged form used on the wire:
// {"ChatMessage":{...}}.
type chatMessageEnvelope struct {
	ChatMessage *ChatMessage `json:"ChatMessage"`
}

// Encode encodes the message into its wire envelope
func (m *ChatMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(chatMessageEnvelope{ChatMessage: m})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat message: %w", err)
	}
	return data, nil
}

// DecodeChatMessage decodes a wire envelope into a ChatMessage
func DecodeChatMessage(data []byte) (ChatMessage, error) {
	var env chatMessageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ChatMessage{}, fmt.Errorf("failed to decode chat message: %w", err)
	}
	if env.ChatMessage == nil {
		return ChatMessage{}, ErrNotChatMessage
	}
	return *env.ChatMessage, nil
}
