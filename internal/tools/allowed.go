package tools

import (
	"context"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
)

// ListAllowedTool projects the permission registry for the caller. Always
// available; listing has no gating effect.
type ListAllowedTool struct {
	deps *Deps
}

func NewListAllowedTool(d *Deps) *ListAllowedTool { return &ListAllowedTool{deps: d} }

func (t *ListAllowedTool) Name() string { return "list_allowed" }

func (t *ListAllowedTool) Description() string {
	return "List all allowed recipients with their permissions (canSend, canRead, canDelete)"
}

func (t *ListAllowedTool) Parameters() map[string]interface{} { return emptyObjectSchema() }

func (t *ListAllowedTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	entries := t.deps.Allow.List()
	payload := struct {
		Total      int               `json:"total"`
		Recipients []allowlist.Entry `json:"recipients"`
		ConfigPath string            `json:"configPath"`
		Setup      string            `json:"setup,omitempty"`
	}{
		Total:      len(entries),
		Recipients: entries,
		ConfigPath: t.deps.configPathLabel(),
	}
	if payload.Recipients == nil {
		payload.Recipients = []allowlist.Entry{}
	}
	if len(entries) == 0 {
		payload.Setup = "No recipients configured. Use list_chats to find chat IDs, then add them to your config file"
	}
	return JSONResult(payload)
}
