// Package session owns the single WhatsApp session handle and drives it
// through its lifecycle. Establishment is expensive (tens of seconds, and a
// human pairing step when no credential is stored), so it is deferred until
// the first operation needs it and concurrent callers collapse into one
// attempt.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nextlevelbuilder/zappy/internal/chat"
)

const (
	// DefaultWaitCeiling bounds how long a follower of an in-flight attempt
	// waits before being told the attempt is still pending.
	DefaultWaitCeiling = 60 * time.Second
	// DefaultSettleDelay is enforced after the transport's connected signal
	// before the session is trusted to have finished loading conversation
	// state.
	DefaultSettleDelay = 5 * time.Second
	// DefaultDismissDelay is how long the pairing channel stays up after the
	// session connects, so the operator sees the success state.
	DefaultDismissDelay = 3 * time.Second
)

// Pairer presents pairing tokens to a human operator out of band from the
// tool-call path.
type Pairer interface {
	Present(code string) error
	DismissAfter(d time.Duration)
	Dismiss()
}

// Factory creates a fresh transport handle for one connection attempt.
type Factory func() (chat.Transport, error)

// Config holds the manager's timing parameters. Zero values take the
// defaults above; these are internal tuning knobs, not user configuration.
type Config struct {
	WaitCeiling  time.Duration
	SettleDelay  time.Duration
	DismissDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.WaitCeiling <= 0 {
		c.WaitCeiling = DefaultWaitCeiling
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.DismissDelay <= 0 {
		c.DismissDelay = DefaultDismissDelay
	}
	return c
}

// Status is a point-in-time snapshot of the session for introspection.
type Status struct {
	Phase         Phase
	Connected     bool
	Initializing  bool
	ClientCreated bool
	PendingCode   bool
}

// Manager arbitrates access to the session. Only the manager mutates the
// phase or the transport handle; gateway operations borrow the handle per
// call via Client after EnsureReady reports true.
type Manager struct {
	factory Factory
	pairing Pairer
	cfg     Config

	flight singleflight.Group

	mu          sync.Mutex
	phase       Phase
	client      chat.Transport
	pendingCode string
}

// NewManager creates a lifecycle manager. pairing may be nil, in which case
// pairing codes are only logged.
func NewManager(factory Factory, pairing Pairer, cfg Config) *Manager {
	return &Manager{
		factory: factory,
		pairing: pairing,
		cfg:     cfg.withDefaults(),
	}
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// IsReady reports whether operations may proceed right now.
func (m *Manager) IsReady() bool { return m.Phase() == Ready }

// Client returns the current transport handle, or nil when no session
// exists. Valid for the duration of one gateway call; callers must not
// retain it across calls.
func (m *Manager) Client() chat.Transport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

// Status snapshots the session state for the status operation.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Phase:         m.phase,
		Connected:     m.phase == Ready,
		Initializing:  m.phase == Initializing || m.phase == AwaitingPairing || m.phase == Syncing,
		ClientCreated: m.client != nil,
		PendingCode:   m.pendingCode != "",
	}
}

// EnsureReady makes the session usable, establishing it if necessary, and
// reports whether operations may proceed.
//
// Concurrent callers collapse into a single connection attempt: the first
// caller owns the attempt and every other caller waits on its outcome. A
// follower that outwaits WaitCeiling is told the attempt is still pending
// (false) without cancelling it; a later call may still observe success.
func (m *Manager) EnsureReady(ctx context.Context) bool {
	if m.IsReady() {
		return true
	}

	ch := m.flight.DoChan("connect", func() (any, error) {
		return m.connect(), nil
	})

	select {
	case res := <-ch:
		ok, _ := res.Val.(bool)
		return ok
	case <-time.After(m.cfg.WaitCeiling):
		slog.Warn("session attempt still pending after wait ceiling", "ceiling", m.cfg.WaitCeiling)
		return false
	case <-ctx.Done():
		return false
	}
}

// connect runs one full connection attempt. It is only ever executed by the
// single-flight owner.
func (m *Manager) connect() bool {
	m.mu.Lock()
	if m.phase == Ready {
		m.mu.Unlock()
		return true
	}
	m.phase = Initializing
	m.mu.Unlock()

	slog.Info("initializing whatsapp client (lazy)")

	client, err := m.factory()
	if err != nil {
		slog.Error("failed to create whatsapp client", "error", err)
		m.fail()
		return false
	}
	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	done := make(chan bool, 1)
	finish := func(ok bool) {
		select {
		case done <- ok:
		default:
		}
	}

	h := chat.Handlers{
		PairingCode: func(code string) {
			m.mu.Lock()
			m.phase = AwaitingPairing
			m.pendingCode = code
			m.mu.Unlock()
			slog.Info("pairing code received")
			if m.pairing == nil {
				return
			}
			if err := m.pairing.Present(code); err != nil {
				slog.Error("pairing channel unavailable", "error", err)
				m.fail()
				finish(false)
			}
		},
		Authenticated: func() {
			m.mu.Lock()
			m.pendingCode = ""
			m.mu.Unlock()
			slog.Info("authenticated")
		},
		AuthFailure: func(reason string) {
			slog.Error("authentication failed", "reason", reason)
			m.fail()
			finish(false)
		},
		Connected: func() {
			m.mu.Lock()
			m.phase = Syncing
			m.pendingCode = ""
			settle := m.cfg.SettleDelay
			m.mu.Unlock()
			slog.Info("connected, waiting for session to settle", "settle", settle)
			if m.pairing != nil {
				m.pairing.DismissAfter(m.cfg.DismissDelay)
			}
			go func() {
				time.Sleep(settle)
				m.mu.Lock()
				if m.phase == Syncing {
					m.phase = Ready
				}
				ready := m.phase == Ready
				m.mu.Unlock()
				if ready {
					slog.Info("whatsapp client ready")
				}
				finish(ready)
			}()
		},
		Disconnected: func(reason string) {
			slog.Warn("whatsapp client disconnected", "reason", reason)
			m.reset()
			finish(false)
		},
	}

	// The attempt itself is not cancellable; followers are bounded by the
	// wait ceiling instead.
	if err := client.Connect(context.Background(), h); err != nil {
		slog.Error("whatsapp connect failed", "error", err)
		m.fail()
		return false
	}

	return <-done
}

// fail marks the current attempt failed and discards the handle. The next
// EnsureReady starts a brand-new attempt.
func (m *Manager) fail() {
	m.mu.Lock()
	m.phase = Failed
	client := m.client
	m.client = nil
	m.pendingCode = ""
	m.mu.Unlock()
	if client != nil {
		go client.Disconnect()
	}
}

// reset returns to Unstarted after a disconnect, discarding the handle.
func (m *Manager) reset() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.phase = Unstarted
	m.pendingCode = ""
	m.mu.Unlock()
	if client != nil {
		go client.Disconnect()
	}
}

// Shutdown tears the session down during process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.phase = Unstarted
	m.pendingCode = ""
	m.mu.Unlock()
	if client != nil {
		client.Disconnect()
	}
	if m.pairing != nil {
		m.pairing.Dismiss()
	}
}
