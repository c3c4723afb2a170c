package tools

import (
	"context"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
)

// ownershipWindow is how many recent messages are searched when locating
// the deletion target.
const ownershipWindow = 50

// DeleteTool deletes a message previously sent by this account. The
// ownership check is independent of the canDelete flag: another party's
// message is never deleted, no matter what the allow list says.
type DeleteTool struct {
	deps *Deps
}

func NewDeleteTool(d *Deps) *DeleteTool { return &DeleteTool{deps: d} }

func (t *DeleteTool) Name() string { return "delete_message" }

func (t *DeleteTool) Description() string {
	return "Delete a message. Requires canDelete permission. Can only delete messages sent by you."
}

func (t *DeleteTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"chatId": map[string]interface{}{
				"type":        "string",
				"description": "Chat ID where the message is",
			},
			"messageId": map[string]interface{}{
				"type":        "string",
				"description": "Message ID to delete (from get_messages)",
			},
			"forEveryone": map[string]interface{}{
				"type":        "boolean",
				"description": "Delete for everyone, not just me (default: true)",
			},
		},
		"required": []string{"chatId", "messageId"},
	}
}

func (t *DeleteTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	rawID := stringArg(args, "chatId")
	messageID := stringArg(args, "messageId")
	if rawID == "" || messageID == "" {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: "both 'chatId' and 'messageId' are required"})
	}
	forEveryone := boolArg(args, "forEveryone", true)

	client, res := t.deps.ensureReady(ctx)
	if res != nil {
		return res
	}

	chatID := allowlist.Normalize(rawID)
	if !t.deps.Allow.Allowed(chatID, allowlist.CapDelete) {
		return ErrorResult(struct {
			Error  string `json:"error"`
			ChatID string `json:"chatId"`
			Hint   string `json:"hint"`
		}{
			Error:  "Not allowed to delete messages in this chat",
			ChatID: chatID,
			Hint:   "Add this chat to your config with canDelete: true",
		})
	}

	window, err := client.Messages(ctx, chatID, ownershipWindow)
	if err != nil {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
	}

	var found bool
	var fromMe bool
	for _, m := range window {
		if m.ID == messageID {
			found = true
			fromMe = m.FromMe
			break
		}
	}
	if !found {
		return ErrorResult(struct {
			Error     string `json:"error"`
			MessageID string `json:"messageId"`
			Hint      string `json:"hint"`
		}{
			Error:     "Message not found",
			MessageID: messageID,
			Hint:      "Use get_messages to find valid message IDs",
		})
	}
	if !fromMe {
		return ErrorResult(struct {
			Error     string `json:"error"`
			MessageID string `json:"messageId"`
		}{
			Error:     "Can only delete messages sent by you",
			MessageID: messageID,
		})
	}

	if err := client.Delete(ctx, chatID, messageID, forEveryone); err != nil {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: err.Error()})
	}

	return JSONResult(struct {
		Success            bool   `json:"success"`
		MessageID          string `json:"messageId"`
		DeletedForEveryone bool   `json:"deletedForEveryone"`
	}{
		Success:            true,
		MessageID:          messageID,
		DeletedForEveryone: forEveryone,
	})
}
