package tools

import (
	"context"
	"strings"
)

const defaultChatLimit = 50

// ListChatsTool is the discovery operation: it lists conversations with the
// capabilities each would have under the current allow list. It works with
// an empty registry — it is how an operator bootstraps one.
type ListChatsTool struct {
	deps *Deps
}

func NewListChatsTool(d *Deps) *ListChatsTool { return &ListChatsTool{deps: d} }

func (t *ListChatsTool) Name() string { return "list_chats" }

func (t *ListChatsTool) Description() string {
	return "List all WhatsApp chats with their IDs and permissions. Use this to find chat IDs for config setup."
}

func (t *ListChatsTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"limit": map[string]interface{}{
				"type":        "number",
				"description": "Maximum number of chats to return (default: 50)",
			},
			"groupsOnly": map[string]interface{}{
				"type":        "boolean",
				"description": "Only show group chats (default: false)",
			},
		},
	}
}

type chatEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsGroup     bool   `json:"isGroup"`
	CanSend     bool   `json:"canSend"`
	CanRead     bool   `json:"canRead"`
	CanDelete   bool   `json:"canDelete"`
	UnreadCount int    `json:"unreadCount"`
}

func (t *ListChatsTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	limit := intArg(args, "limit", defaultChatLimit)
	if limit <= 0 {
		limit = defaultChatLimit
	}
	groupsOnly := boolArg(args, "groupsOnly", false)

	client, res := t.deps.ensureReady(ctx)
	if res != nil {
		return res
	}

	chats, err := client.Chats(ctx, limit, groupsOnly)
	if err != nil {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
	}
	total, err := client.ChatCount(ctx, groupsOnly)
	if err != nil {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
	}

	entries := make([]chatEntry, 0, len(chats))
	for _, c := range chats {
		name := c.Name
		if name == "" {
			name, _, _ = strings.Cut(c.ID, "@")
		}
		entry := chatEntry{
			ID:          c.ID,
			Name:        name,
			IsGroup:     c.IsGroup,
			UnreadCount: c.UnreadCount,
		}
		if e, ok := t.deps.Allow.Lookup(c.ID); ok {
			entry.CanSend = e.CanSend
			entry.CanRead = e.CanRead
			entry.CanDelete = e.CanDelete
		}
		entries = append(entries, entry)
	}

	payload := struct {
		Total    int         `json:"total"`
		Returned int         `json:"returned"`
		Chats    []chatEntry `json:"chats"`
		Warning  string      `json:"warning,omitempty"`
	}{
		Total:    total,
		Returned: len(entries),
		Chats:    entries,
	}
	if t.deps.Allow.Empty() && !t.deps.Allow.SuppressWarnings() {
		payload.Warning = "No recipients configured yet. Copy chat IDs from above and add to your config to enable send/read."
	}
	return JSONResult(payload)
}
