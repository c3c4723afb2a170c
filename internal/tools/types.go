// Package tools implements the operation gateway: the callable operations
// exposed to the tool-dispatch server. Every operation first ensures the
// session is ready, normalizes its recipient identifiers, consults the
// permission registry, and only then touches the transport; results and
// failures are wrapped into the uniform Result envelope.
package tools

import (
	"context"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
	"github.com/nextlevelbuilder/zappy/internal/chat"
	"github.com/nextlevelbuilder/zappy/internal/session"
)

// Tool is the interface all gateway operations implement.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) *Result
}

// SessionController is the slice of the session lifecycle manager the
// gateway needs: readiness arbitration, the per-call transport borrow, and
// the status snapshot.
type SessionController interface {
	EnsureReady(ctx context.Context) bool
	Client() chat.Transport
	Status() session.Status
}

// Deps is the shared dependency set injected into every gateway tool.
type Deps struct {
	Session    SessionController
	Allow      *allowlist.Registry
	ConfigPath string
	AuthPath   string
}

// --- argument extraction (tool-call arguments arrive as decoded JSON) ---

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}
