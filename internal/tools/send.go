package tools

import (
	"context"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
)

// SendTool sends a text message to an allowed recipient.
type SendTool struct {
	deps *Deps
}

func NewSendTool(d *Deps) *SendTool { return &SendTool{deps: d} }

func (t *SendTool) Name() string { return "send_message" }

func (t *SendTool) Description() string {
	return "Send a WhatsApp message to an ALLOWED phone number or group. Will fail if recipient is not in the allowed list."
}

func (t *SendTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"to": map[string]interface{}{
				"type":        "string",
				"description": "Phone number (with country code) or group ID - must be in allowed list",
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Message text to send",
			},
		},
		"required": []string{"to", "message"},
	}
}

func (t *SendTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	to := stringArg(args, "to")
	message := stringArg(args, "message")
	if to == "" || message == "" {
		return ErrorResult(struct {
			Error string `json:"error"`
		}{Error: "both 'to' and 'message' are required"})
	}

	client, res := t.deps.ensureReady(ctx)
	if res != nil {
		return res
	}

	chatID := allowlist.Normalize(to)
	if !t.deps.Allow.Allowed(chatID, allowlist.CapSend) {
		// The full allow list is included so the caller can self-correct.
		return ErrorResult(struct {
			Error             string            `json:"error"`
			Recipient         string            `json:"recipient"`
			Hint              string            `json:"hint"`
			AllowedRecipients []allowlist.Entry `json:"allowedRecipients"`
		}{
			Error:             "Not allowed to send to this recipient",
			Recipient:         chatID,
			Hint:              "Add this recipient to your config with canSend: true",
			AllowedRecipients: t.deps.Allow.List(),
		})
	}

	receipt, err := client.Send(ctx, chatID, message)
	if err != nil {
		return ErrorResult(struct {
			Error string `json:"error"`
			Hint  string `json:"hint"`
		}{
			Error: err.Error(),
			Hint:  "Make sure the phone number includes country code and is registered on WhatsApp",
		})
	}

	return JSONResult(struct {
		Success   bool   `json:"success"`
		MessageID string `json:"messageId"`
		To        string `json:"to"`
		Timestamp int64  `json:"timestamp"`
	}{
		Success:   true,
		MessageID: receipt.MessageID,
		To:        chatID,
		Timestamp: receipt.Timestamp.Unix(),
	})
}
