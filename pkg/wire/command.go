// Package wire defines the text protocol spoken over the websocket:
// commands sent by clients as plain text frames and replies sent by the
// server as JSON text frames.
package wire

import (
	"errors"
	"fmt"
	"strings"
)

const (
	subscribePrefix   = "SUBSCRIBE("
	sendMessagePrefix = "SEND_MESSAGE("
)

// ErrInvalidCommand is returned when a text frame does not match the
// command grammar.
var ErrInvalidCommand = errors.New("invalid command")

// CommandKind represents the type of client command
type CommandKind int

const (
	CommandSubscribe CommandKind = iota
	CommandSendMessage
)

// String returns the string representation of CommandKind
func (k CommandKind) String() string {
	switch k {
	case CommandSubscribe:
		return "SUBSCRIBE"
	case CommandSendMessage:
		return "SEND_MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// Command represents a parsed client command
type Command struct {
	Kind   CommandKind
	Target string // hub_id:channel_id, uninterpreted
	Text   string // message text, SEND_MESSAGE only
}

// Subscribe builds the subscription command for a hub_id:channel_id target.
// The target is embedded verbatim.
func Subscribe(target string) string {
	return subscribePrefix + target + ")"
}

// SendMessage builds the message command for a hub_id:channel_id target.
// The text is embedded between the quotes without escaping: the grammar has
// no escape sequences, so quotes inside text travel as-is.
func SendMessage(target, text string) string {
	return sendMessagePrefix + target + `,"` + text + `")`
}

// ParseCommand parses a text frame into a Command.
//
// The SEND_MESSAGE body is split at the first `,"` and stripped of the final
// `")`, so any text a client can produce with SendMessage parses back to the
// same target and text, provided the target itself contains no `,"`.
func ParseCommand(s string) (Command, error) {
	switch {
	case strings.HasPrefix(s, subscribePrefix) && strings.HasSuffix(s, ")"):
		return Command{
			Kind:   CommandSubscribe,
			Target: s[len(subscribePrefix) : len(s)-1],
		}, nil
	case strings.HasPrefix(s, sendMessagePrefix) && strings.HasSuffix(s, `")`):
		body := s[len(sendMessagePrefix) : len(s)-2]
		i := strings.Index(body, `,"`)
		if i < 0 {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
		}
		return Command{
			Kind:   CommandSendMessage,
			Target: body[:i],
			Text:   body[i+2:],
		}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidCommand, s)
	}
}

// SplitTarget splits a hub_id:channel_id target at the first colon.
// ok is false when either side is empty or the colon is missing.
func SplitTarget(target string) (hubID, channelID string, ok bool) {
	hubID, channelID, ok = strings.Cut(target, ":")
	if !ok || hubID == "" || channelID == "" {
		return "", "", false
	}
	return hubID, channelID, true
}
