package wa

import (
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
)

// toJID converts a canonical identifier into a whatsmeow JID. The canonical
// individual namespace (@c.us) maps onto whatsmeow's user server.
func toJID(id string) (types.JID, error) {
	switch {
	case strings.HasSuffix(id, allowlist.GroupSuffix):
		return types.NewJID(strings.TrimSuffix(id, allowlist.GroupSuffix), types.GroupServer), nil
	case strings.HasSuffix(id, allowlist.UserSuffix):
		return types.NewJID(strings.TrimSuffix(id, allowlist.UserSuffix), types.DefaultUserServer), nil
	}
	jid, err := types.ParseJID(id)
	if err != nil {
		return types.JID{}, fmt.Errorf("invalid chat id %q: %w", id, err)
	}
	return jid, nil
}

// canonicalID maps a whatsmeow JID back into the canonical namespace used by
// the permission registry.
func canonicalID(jid types.JID) string {
	if jid.Server == types.GroupServer {
		return jid.User + allowlist.GroupSuffix
	}
	return jid.User + allowlist.UserSuffix
}
