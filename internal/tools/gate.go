package tools

import (
	"context"

	"github.com/nextlevelbuilder/zappy/internal/chat"
)

// ensureReady drives the lazy session establishment for one operation and
// borrows the transport handle exactly once. The manager may discard the
// handle at any moment on disconnect, so the operation must keep using the
// returned handle rather than borrowing again mid-call. On failure the
// lifecycle error envelope is returned and no transport call happens.
func (d *Deps) ensureReady(ctx context.Context) (chat.Transport, *Result) {
	if d.Session.EnsureReady(ctx) {
		if client := d.Session.Client(); client != nil {
			return client, nil
		}
	}
	return nil, ErrorResult(struct {
		Error string `json:"error"`
	}{
		Error: "WhatsApp client failed to initialize. Check status with get_status tool.",
	})
}

func (d *Deps) configPathLabel() string {
	if d.ConfigPath == "" {
		return "none"
	}
	return d.ConfigPath
}

func emptyObjectSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
