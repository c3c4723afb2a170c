package tools

import (
	"context"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
)

const defaultMessageLimit = 20

// MessagesTool fetches recent messages from a chat with read permission.
type MessagesTool struct {
	deps *Deps
}

func NewMessagesTool(d *Deps) *MessagesTool { return &MessagesTool{deps: d} }

func (t *MessagesTool) Name() string { return "get_messages" }

func (t *MessagesTool) Description() string {
	return "Get recent messages from a chat. Only works for chats with canRead permission."
}

func (t *MessagesTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"chatId": map[string]interface{}{
				"type":        "string",
				"description": "Chat ID (from list_chats) or phone number",
			},
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Number of messages to fetch (default: 20)",
			},
		},
		"required": []string{"chatId"},
	}
}

type messageEntry struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	FromMe    bool   `json:"fromMe"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
	HasMedia  bool   `json:"hasMedia"`
}

func (t *MessagesTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	rawID := stringArg(args, "chatId")
	if rawID == "" {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: "'chatId' is required"})
	}
	limit := intArg(args, "limit", defaultMessageLimit)
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	client, res := t.deps.ensureReady(ctx)
	if res != nil {
		return res
	}

	chatID := allowlist.Normalize(rawID)
	if !t.deps.Allow.Allowed(chatID, allowlist.CapRead) {
		return ErrorResult(struct {
			Error  string `json:"error"`
			ChatID string `json:"chatId"`
			Hint   string `json:"hint"`
		}{
			Error:  "Not allowed to read messages from this chat",
			ChatID: chatID,
			Hint:   "Add this chat to your config with canRead: true",
		})
	}

	messages, err := client.Messages(ctx, chatID, limit)
	if err != nil {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
	}

	entries := make([]messageEntry, 0, len(messages))
	for _, m := range messages {
		entries = append(entries, messageEntry{
			ID:        m.ID,
			From:      m.Sender,
			FromMe:    m.FromMe,
			Body:      m.Body,
			Timestamp: m.Timestamp.Unix(),
			Type:      m.Kind,
			HasMedia:  m.HasMedia,
		})
	}

	return JSONResult(struct {
		ChatID   string         `json:"chatId"`
		ChatName string         `json:"chatName"`
		Messages []messageEntry `json:"messages"`
	}{
		ChatID:   chatID,
		ChatName: client.ChatName(chatID),
		Messages: entries,
	})
}
