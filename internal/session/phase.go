package session

// Phase is the lifecycle state of the WhatsApp session.
//
// Unstarted -> Initializing -> (AwaitingPairing) -> Syncing -> Ready, with
// Failed terminal for one attempt. A disconnect at any phase discards the
// handle and returns to Unstarted; the next EnsureReady starts a brand-new
// attempt.
type Phase int

const (
	Unstarted Phase = iota
	Initializing
	AwaitingPairing
	Syncing
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Unstarted:
		return "unstarted"
	case Initializing:
		return "initializing"
	case AwaitingPairing:
		return "awaiting_pairing"
	case Syncing:
		return "syncing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}
