// Package wa adapts go.mau.fi/whatsmeow to the chat.Transport contract.
// Credentials persist in whatsmeow's sqlstore container; conversation
// history lives in the local MessageStore, fed by live events and history
// sync.
package wa

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/nextlevelbuilder/zappy/internal/chat"
)

// Client is the whatsmeow-backed transport. One Client represents one
// connection attempt; the session manager creates a fresh Client per
// attempt and discards it on disconnect.
type Client struct {
	wm    *whatsmeow.Client
	store *MessageStore

	mu       sync.Mutex
	handlers chat.Handlers
	loggedIn bool

	groupsOnce sync.Once
}

// NewClient opens the credential and message stores and builds the
// whatsmeow client without connecting.
func NewClient(authDB, messageDB string) (*Client, error) {
	ctx := context.Background()

	container, err := sqlstore.New(ctx, "sqlite",
		"file:"+authDB+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err == sql.ErrNoRows {
		device = container.NewDevice()
	} else if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	store, err := NewMessageStore(messageDB)
	if err != nil {
		return nil, err
	}

	// Auto-reconnect stays on until the first Connected: after a QR scan
	// the server replaces the stream (closing the old one) and whatsmeow
	// must reconnect to finish the login. Once the session is up the next
	// disconnect is surfaced to the session manager instead, which discards
	// this handle and re-creates everything on the next ensure.
	wm := whatsmeow.NewClient(device, waLog.Noop)

	return &Client{wm: wm, store: store}, nil
}

// HasCredentials reports whether a prior pairing is stored on disk.
func (c *Client) HasCredentials() bool { return c.wm.Store.ID != nil }

// Connect starts the connect/authentication sequence. When no credential is
// stored the pairing-code channel is consumed and each code is forwarded to
// h.PairingCode until the operator scans one.
func (c *Client) Connect(ctx context.Context, h chat.Handlers) error {
	c.mu.Lock()
	c.handlers = h
	c.mu.Unlock()

	c.wm.AddEventHandler(c.handleEvent)

	if c.wm.Store.ID == nil {
		qrChan, err := c.wm.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("open pairing channel: %w", err)
		}
		if err := c.wm.Connect(); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		go c.consumePairing(qrChan)
		return nil
	}

	if err := c.wm.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

func (c *Client) consumePairing(ch <-chan whatsmeow.QRChannelItem) {
	h := c.currentHandlers()
	for item := range ch {
		switch item.Event {
		case "code":
			if h.PairingCode != nil {
				h.PairingCode(item.Code)
			}
		case "success":
			if h.Authenticated != nil {
				h.Authenticated()
			}
		case "timeout":
			if h.AuthFailure != nil {
				h.AuthFailure("pairing timed out before the code was scanned")
			}
		default:
			if h.AuthFailure != nil {
				reason := item.Event
				if item.Error != nil {
					reason = item.Error.Error()
				}
				h.AuthFailure(reason)
			}
		}
	}
}

func (c *Client) currentHandlers() chat.Handlers {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handlers
}

func (c *Client) handleEvent(evt any) {
	h := c.currentHandlers()
	switch v := evt.(type) {
	case *events.Connected:
		c.markLoggedIn()
		if h.Connected != nil {
			h.Connected()
		}
	case *events.PairSuccess:
		if h.Authenticated != nil {
			h.Authenticated()
		}
	case *events.LoggedOut:
		if h.Disconnected != nil {
			h.Disconnected("logged out")
		}
	case *events.Disconnected:
		// Before the first Connected a dropped stream is part of the
		// pairing dance and whatsmeow reconnects on its own; only a
		// post-login disconnect ends the session.
		if !c.isLoggedIn() {
			return
		}
		if h.Disconnected != nil {
			h.Disconnected("connection closed")
		}
	case *events.Message:
		c.recordMessage(v)
	case *events.HistorySync:
		c.recordHistory(v)
	}
}

func (c *Client) markLoggedIn() {
	c.mu.Lock()
	first := !c.loggedIn
	c.loggedIn = true
	c.mu.Unlock()
	if first && c.wm != nil {
		c.wm.EnableAutoReconnect = false
	}
}

func (c *Client) isLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

// Disconnect tears down the connection and closes the message store.
func (c *Client) Disconnect() {
	c.wm.Disconnect()
	if err := c.store.Close(); err != nil {
		slog.Warn("close message store", "error", err)
	}
}

func (c *Client) recordMessage(evt *events.Message) {
	m := chat.Message{
		ID:        string(evt.Info.ID),
		ChatID:    canonicalID(evt.Info.Chat),
		Sender:    canonicalID(evt.Info.Sender),
		FromMe:    evt.Info.IsFromMe,
		Body:      textContent(evt.Message),
		Timestamp: evt.Info.Timestamp,
		Kind:      kindOf(evt.Message),
	}
	m.HasMedia = m.Kind != "text" && m.Kind != ""

	// For direct chats the sender's push name doubles as the chat name.
	var chatName string
	if !evt.Info.IsFromMe && evt.Info.Chat.Server != types.GroupServer {
		chatName = evt.Info.PushName
	}
	if err := c.store.SaveMessage(m, chatName); err != nil {
		slog.Warn("record message", "chat", m.ChatID, "error", err)
	}
}

func (c *Client) recordHistory(evt *events.HistorySync) {
	for _, conv := range evt.Data.GetConversations() {
		jid, err := types.ParseJID(conv.GetID())
		if err != nil {
			continue
		}
		chatID := canonicalID(jid)
		if err := c.store.UpsertChat(chatID, conv.GetName(), time.Time{}); err != nil {
			slog.Warn("record conversation", "chat", chatID, "error", err)
			continue
		}
		for _, hmsg := range conv.GetMessages() {
			parsed, err := c.wm.ParseWebMessage(jid, hmsg.GetMessage())
			if err != nil {
				continue
			}
			c.recordMessage(parsed)
		}
	}
}

// Chats lists known conversations, filling missing display names from the
// contact store.
func (c *Client) Chats(ctx context.Context, limit int, groupsOnly bool) ([]chat.Chat, error) {
	c.groupsOnce.Do(func() { c.syncGroups(ctx) })

	chats, err := c.store.Chats(limit, groupsOnly)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Name != "" || chats[i].IsGroup {
			continue
		}
		jid, err := toJID(chats[i].ID)
		if err != nil {
			continue
		}
		if info, err := c.wm.Store.Contacts.GetContact(ctx, jid); err == nil {
			if name := contactName(info); name != "" {
				chats[i].Name = name
			}
		}
	}
	return chats, nil
}

// syncGroups seeds the conversation store with the account's joined groups
// so discovery works before any group message arrives.
func (c *Client) syncGroups(ctx context.Context) {
	groups, err := c.wm.GetJoinedGroups(ctx)
	if err != nil {
		slog.Warn("list joined groups", "error", err)
		return
	}
	for _, g := range groups {
		if err := c.store.UpsertChat(canonicalID(g.JID), g.GroupName.Name, time.Time{}); err != nil {
			slog.Warn("record group", "group", g.JID.String(), "error", err)
		}
	}
}

func contactName(info types.ContactInfo) string {
	switch {
	case info.FullName != "":
		return info.FullName
	case info.PushName != "":
		return info.PushName
	case info.BusinessName != "":
		return info.BusinessName
	}
	return ""
}

// ChatCount returns the number of known conversations.
func (c *Client) ChatCount(ctx context.Context, groupsOnly bool) (int, error) {
	c.groupsOnce.Do(func() { c.syncGroups(ctx) })
	return c.store.ChatCount(groupsOnly)
}

// Messages returns recent messages for a conversation.
func (c *Client) Messages(ctx context.Context, chatID string, limit int) ([]chat.Message, error) {
	return c.store.Recent(chatID, limit)
}

// ChatName returns the stored display name for a conversation.
func (c *Client) ChatName(chatID string) string { return c.store.ChatName(chatID) }

// Send delivers a text message.
func (c *Client) Send(ctx context.Context, chatID, text string) (chat.SendReceipt, error) {
	jid, err := toJID(chatID)
	if err != nil {
		return chat.SendReceipt{}, err
	}
	resp, err := c.wm.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(text)})
	if err != nil {
		return chat.SendReceipt{}, err
	}
	m := chat.Message{
		ID:        string(resp.ID),
		ChatID:    chatID,
		Sender:    "me",
		FromMe:    true,
		Body:      text,
		Timestamp: resp.Timestamp,
		Kind:      "text",
	}
	if err := c.store.SaveMessage(m, ""); err != nil {
		slog.Warn("record sent message", "chat", chatID, "error", err)
	}
	return chat.SendReceipt{MessageID: string(resp.ID), Timestamp: resp.Timestamp}, nil
}

// Delete revokes a message. forEveryone=false removes only the local record,
// since a revoke is inherently for everyone.
func (c *Client) Delete(ctx context.Context, chatID, messageID string, forEveryone bool) error {
	if forEveryone {
		jid, err := toJID(chatID)
		if err != nil {
			return err
		}
		revoke := c.wm.BuildRevoke(jid, types.EmptyJID, types.MessageID(messageID))
		if _, err := c.wm.SendMessage(ctx, jid, revoke); err != nil {
			return err
		}
	}
	return c.store.DeleteMessage(chatID, messageID)
}

func textContent(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if t := msg.GetExtendedTextMessage().GetText(); t != "" {
		return t
	}
	if t := msg.GetConversation(); t != "" {
		return t
	}
	if im := msg.GetImageMessage(); im != nil {
		return im.GetCaption()
	}
	if vi := msg.GetVideoMessage(); vi != nil {
		return vi.GetCaption()
	}
	if doc := msg.GetDocumentMessage(); doc != nil {
		return doc.GetCaption()
	}
	return ""
}

func kindOf(msg *waE2E.Message) string {
	switch {
	case msg == nil:
		return ""
	case msg.GetImageMessage() != nil:
		return "image"
	case msg.GetVideoMessage() != nil:
		return "video"
	case msg.GetAudioMessage() != nil:
		return "audio"
	case msg.GetDocumentMessage() != nil:
		return "document"
	case msg.GetStickerMessage() != nil:
		return "sticker"
	}
	return "text"
}
