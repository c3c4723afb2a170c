// Package allowlist holds the per-recipient permission registry that gates
// every gateway operation. The registry is loaded once at startup and is
// read-only afterwards, so capability queries need no locking.
//
// Absence from the registry denies every capability. For configured
// recipients, send and read default to allowed while delete defaults to
// denied, reflecting the asymmetric risk of the operations.
package allowlist

import "log/slog"

// Capability is one of the gated operation kinds.
type Capability int

const (
	CapSend Capability = iota
	CapRead
	CapDelete
)

func (c Capability) String() string {
	switch c {
	case CapSend:
		return "send"
	case CapRead:
		return "read"
	case CapDelete:
		return "delete"
	}
	return "unknown"
}

// Recipient is one configured contact or group, in the config document's
// JSON shape. Nil CanSend/CanRead mean true; CanDelete must be set
// explicitly to grant deletion.
type Recipient struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	CanSend   *bool  `json:"canSend,omitempty"`
	CanRead   *bool  `json:"canRead,omitempty"`
	CanDelete bool   `json:"canDelete,omitempty"`
}

// Entry is a recipient with its capability defaults resolved.
type Entry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CanSend   bool   `json:"canSend"`
	CanRead   bool   `json:"canRead"`
	CanDelete bool   `json:"canDelete"`
}

// Registry answers capability queries for canonical recipient identifiers.
type Registry struct {
	entries          []Entry
	index            map[string]Entry
	suppressWarnings bool
}

// NewRegistry builds a registry from the configured recipients, preserving
// load order for List.
func NewRegistry(recipients []Recipient, suppressWarnings bool) *Registry {
	r := &Registry{
		index:            make(map[string]Entry, len(recipients)),
		suppressWarnings: suppressWarnings,
	}
	for _, rec := range recipients {
		e := resolve(rec)
		r.entries = append(r.entries, e)
		r.index[e.ID] = e
	}
	if len(r.entries) == 0 && !suppressWarnings {
		slog.Warn("no allowed recipients configured; send/read/delete will be denied",
			"hint", "use list_chats to find chat IDs, then add them to your config")
	}
	return r
}

// resolve normalizes the configured identifier and applies the capability
// defaults. Config files may carry raw phone numbers; queries always arrive
// canonical.
func resolve(rec Recipient) Entry {
	name := rec.Name
	if name == "" {
		name = "Unknown"
	}
	return Entry{
		ID:        Normalize(rec.ID),
		Name:      name,
		CanSend:   rec.CanSend == nil || *rec.CanSend,
		CanRead:   rec.CanRead == nil || *rec.CanRead,
		CanDelete: rec.CanDelete,
	}
}

// Allowed reports whether the identifier may perform the given capability.
// Identifiers absent from the registry are denied everything.
func (r *Registry) Allowed(id string, cap Capability) bool {
	e, ok := r.index[id]
	if !ok {
		return false
	}
	switch cap {
	case CapSend:
		return e.CanSend
	case CapRead:
		return e.CanRead
	case CapDelete:
		return e.CanDelete
	}
	return false
}

// Lookup returns the resolved entry for an identifier.
func (r *Registry) Lookup(id string) (Entry, bool) {
	e, ok := r.index[id]
	return e, ok
}

// List returns all entries in load order. Purely informational; listing has
// no gating effect.
func (r *Registry) List() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Empty reports whether no recipients are configured.
func (r *Registry) Empty() bool { return len(r.entries) == 0 }

// SuppressWarnings reports whether setup warnings should be omitted from
// discovery responses.
func (r *Registry) SuppressWarnings() bool { return r.suppressWarnings }
