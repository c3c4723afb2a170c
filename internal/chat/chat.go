// Package chat defines the contract between the session lifecycle manager,
// the operation gateway and the underlying WhatsApp transport.
//
// The transport drives an event-based connect sequence: it reports pairing
// codes, authentication results, connection and disconnection through the
// Handlers callbacks registered at Connect time. Once connected it answers
// conversation queries and carries sends/deletes.
package chat

import (
	"context"
	"time"
)

// Chat is one conversation as seen by the transport, projected into the
// stable shape the gateway returns to callers.
type Chat struct {
	ID              string    // canonical identifier (…@c.us or …@g.us)
	Name            string
	IsGroup         bool
	UnreadCount     int
	LastMessageTime time.Time
}

// Message is one message in a conversation.
type Message struct {
	ID        string
	ChatID    string
	Sender    string
	FromMe    bool
	Body      string
	Timestamp time.Time
	Kind      string // "text", "image", "audio", …
	HasMedia  bool
}

// SendReceipt reports a successfully sent message.
type SendReceipt struct {
	MessageID string
	Timestamp time.Time
}

// Handlers receives the transport's connect-sequence signals. Nil fields are
// skipped. The transport invokes them from its own event loop; handlers must
// not block.
type Handlers struct {
	// PairingCode fires when the account has no usable credential and a
	// pairing token must be confirmed out of band. May fire repeatedly as
	// tokens expire and are superseded.
	PairingCode func(code string)
	// Authenticated fires once the pairing or stored credential is accepted.
	Authenticated func()
	// AuthFailure fires when authentication is explicitly rejected.
	AuthFailure func(reason string)
	// Connected fires when the transport reports the connection open. The
	// session may still be settling conversation state at this point.
	Connected func()
	// Disconnected fires when the connection drops, at any phase.
	Disconnected func(reason string)
}

// Transport is the live connection to one WhatsApp account. The session
// manager owns exactly one Transport at a time and is the only component
// that may create, connect or discard it; gateway operations borrow it per
// call via the manager.
type Transport interface {
	// HasCredentials reports whether a prior pairing credential is stored,
	// i.e. whether Connect can proceed without a pairing step.
	HasCredentials() bool
	// Connect begins the connect/authentication sequence and returns once
	// the sequence is started; progress arrives through h.
	Connect(ctx context.Context, h Handlers) error
	// Disconnect tears the connection down. Safe to call at any phase.
	Disconnect()

	// Chats lists known conversations, most recent first. groupsOnly
	// restricts the listing to group chats.
	Chats(ctx context.Context, limit int, groupsOnly bool) ([]Chat, error)
	// ChatCount returns the number of known conversations without loading
	// them.
	ChatCount(ctx context.Context, groupsOnly bool) (int, error)
	// Messages returns up to limit recent messages for a conversation in
	// chronological order.
	Messages(ctx context.Context, chatID string, limit int) ([]Message, error)
	// ChatName returns the display name for a conversation, or "" when
	// unknown.
	ChatName(chatID string) string
	// Send delivers a text message to a conversation.
	Send(ctx context.Context, chatID, text string) (SendReceipt, error)
	// Delete revokes a message previously sent by this account. When
	// forEveryone is false only the local record is removed.
	Delete(ctx context.Context, chatID, messageID string, forEveryone bool) error
}
