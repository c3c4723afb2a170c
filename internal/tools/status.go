package tools

import (
	"context"

	"github.com/nextlevelbuilder/zappy/internal/session"
)

// StatusTool reports the session lifecycle state. It never triggers
// initialization and is always available.
type StatusTool struct {
	deps *Deps
}

func NewStatusTool(d *Deps) *StatusTool { return &StatusTool{deps: d} }

func (t *StatusTool) Name() string { return "get_status" }

func (t *StatusTool) Description() string {
	return "Check WhatsApp client connection status. Client initializes lazily on first use."
}

func (t *StatusTool) Parameters() map[string]interface{} { return emptyObjectSchema() }

func (t *StatusTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	st := t.deps.Session.Status()
	return JSONResult(struct {
		Connected         bool   `json:"connected"`
		Initializing      bool   `json:"initializing"`
		ClientCreated     bool   `json:"clientCreated"`
		PendingQR         bool   `json:"pendingQR"`
		Phase             string `json:"phase"`
		ConfigPath        string `json:"configPath"`
		AllowedRecipients int    `json:"allowedRecipients"`
		AuthPath          string `json:"authPath"`
		Message           string `json:"message"`
	}{
		Connected:         st.Connected,
		Initializing:      st.Initializing,
		ClientCreated:     st.ClientCreated,
		PendingQR:         st.PendingCode,
		Phase:             st.Phase.String(),
		ConfigPath:        t.deps.configPathLabel(),
		AllowedRecipients: len(t.deps.Allow.List()),
		AuthPath:          t.deps.AuthPath,
		Message:           statusMessage(st),
	})
}

func statusMessage(st session.Status) string {
	switch {
	case st.Connected:
		return "WhatsApp client is connected and ready"
	case st.PendingCode:
		return "Waiting for QR code scan - browser should have opened"
	case st.Initializing:
		return "WhatsApp client is initializing..."
	case !st.ClientCreated:
		return "WhatsApp client not started yet (will init on first tool use)"
	}
	return "WhatsApp client is not connected"
}
