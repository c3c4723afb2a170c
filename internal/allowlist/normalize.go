package allowlist

import "strings"

// Canonical identifier suffixes. Individual contacts and groups live in
// disjoint namespaces that never collide.
const (
	UserSuffix  = "@c.us"
	GroupSuffix = "@g.us"
)

// Normalize canonicalizes a user-supplied identifier into the form used as
// the registry lookup key. Identifiers already carrying a recognized
// qualifier pass through unchanged; whatsmeow-native user identifiers
// (@s.whatsapp.net, @lid) fold into the @c.us namespace; anything else is
// reduced to its digits and completed into the individual-contact form.
// Pure and idempotent; an empty input yields a bare UserSuffix — callers
// validate at a higher level.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasSuffix(raw, UserSuffix), strings.HasSuffix(raw, GroupSuffix):
		return raw
	case strings.HasSuffix(raw, "@s.whatsapp.net"):
		return strings.TrimSuffix(raw, "@s.whatsapp.net") + UserSuffix
	case strings.HasSuffix(raw, "@lid"):
		return strings.TrimSuffix(raw, "@lid") + UserSuffix
	}
	return digitsOnly(raw) + UserSuffix
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
