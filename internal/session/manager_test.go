package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nextlevelbuilder/zappy/internal/chat"
)

// fakeTransport scripts the connect sequence: Connect records the handlers
// and runs script asynchronously, the way a real event-driven transport
// delivers its signals.
type fakeTransport struct {
	mu       sync.Mutex
	connects int
	handlers chat.Handlers
	script   func(h chat.Handlers)
}

func (f *fakeTransport) HasCredentials() bool { return true }

func (f *fakeTransport) Connect(ctx context.Context, h chat.Handlers) error {
	f.mu.Lock()
	f.connects++
	f.handlers = h
	script := f.script
	f.mu.Unlock()
	if script != nil {
		go script(h)
	}
	return nil
}

func (f *fakeTransport) Disconnect() {}

func (f *fakeTransport) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func (f *fakeTransport) fire(fn func(h chat.Handlers)) {
	f.mu.Lock()
	h := f.handlers
	f.mu.Unlock()
	fn(h)
}

func (f *fakeTransport) Chats(ctx context.Context, limit int, groupsOnly bool) ([]chat.Chat, error) {
	return nil, nil
}
func (f *fakeTransport) ChatCount(ctx context.Context, groupsOnly bool) (int, error) {
	return 0, nil
}
func (f *fakeTransport) Messages(ctx context.Context, chatID string, limit int) ([]chat.Message, error) {
	return nil, nil
}
func (f *fakeTransport) ChatName(chatID string) string { return "" }
func (f *fakeTransport) Send(ctx context.Context, chatID, text string) (chat.SendReceipt, error) {
	return chat.SendReceipt{}, nil
}
func (f *fakeTransport) Delete(ctx context.Context, chatID, messageID string, forEveryone bool) error {
	return nil
}

type fakePairer struct {
	mu        sync.Mutex
	presented []string
	err       error
	dismissed bool
}

func (p *fakePairer) Present(code string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presented = append(p.presented, code)
	return p.err
}

func (p *fakePairer) DismissAfter(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dismissed = true
}

func (p *fakePairer) Dismiss() {}

func (p *fakePairer) presentedCodes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.presented...)
}

func fastConfig() Config {
	return Config{
		WaitCeiling:  2 * time.Second,
		SettleDelay:  20 * time.Millisecond,
		DismissDelay: time.Millisecond,
	}
}

func TestEnsureReadySingleFlight(t *testing.T) {
	var factoryCalls atomic.Int32
	transport := &fakeTransport{
		script: func(h chat.Handlers) {
			time.Sleep(30 * time.Millisecond)
			h.Connected()
		},
	}
	mgr := NewManager(func() (chat.Transport, error) {
		factoryCalls.Add(1)
		return transport, nil
	}, &fakePairer{}, fastConfig())

	const callers = 10
	results := make(chan bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- mgr.EnsureReady(context.Background())
		}()
	}
	wg.Wait()
	close(results)

	for ok := range results {
		if !ok {
			t.Error("every concurrent caller should observe the attempt succeed")
		}
	}
	if n := factoryCalls.Load(); n != 1 {
		t.Errorf("expected exactly 1 transport creation, got %d", n)
	}
	if n := transport.connectCount(); n != 1 {
		t.Errorf("expected exactly 1 connect sequence, got %d", n)
	}
}

func TestReadinessWaitsForSettle(t *testing.T) {
	cfg := fastConfig()
	cfg.SettleDelay = 60 * time.Millisecond

	var mgr *Manager
	sawReadyDuringSettle := make(chan bool, 1)
	transport := &fakeTransport{}
	transport.script = func(h chat.Handlers) {
		h.Connected()
		time.Sleep(20 * time.Millisecond)
		sawReadyDuringSettle <- mgr.IsReady()
	}
	mgr = NewManager(func() (chat.Transport, error) { return transport, nil }, &fakePairer{}, cfg)

	start := time.Now()
	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should succeed")
	}
	if elapsed := time.Since(start); elapsed < cfg.SettleDelay {
		t.Errorf("readiness reported after %v, before the %v settle delay", elapsed, cfg.SettleDelay)
	}
	if <-sawReadyDuringSettle {
		t.Error("session reported ready during the settle window")
	}
	if mgr.Phase() != Ready {
		t.Errorf("expected Ready, got %s", mgr.Phase())
	}
}

func TestReadyFastPathSkipsConnect(t *testing.T) {
	transport := &fakeTransport{script: func(h chat.Handlers) { h.Connected() }}
	mgr := NewManager(func() (chat.Transport, error) { return transport, nil }, &fakePairer{}, fastConfig())

	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("first EnsureReady should succeed")
	}
	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("second EnsureReady should succeed")
	}
	if n := transport.connectCount(); n != 1 {
		t.Errorf("ready fast path should not reconnect, got %d connects", n)
	}
}

func TestAuthFailureFailsAttempt(t *testing.T) {
	transport := &fakeTransport{script: func(h chat.Handlers) { h.AuthFailure("rejected") }}
	var calls atomic.Int32
	mgr := NewManager(func() (chat.Transport, error) {
		calls.Add(1)
		return transport, nil
	}, &fakePairer{}, fastConfig())

	if mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should fail on auth failure")
	}
	if mgr.Phase() != Failed {
		t.Errorf("expected Failed, got %s", mgr.Phase())
	}

	// A later call starts a brand-new attempt.
	transport.script = func(h chat.Handlers) { h.Connected() }
	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("fresh attempt should succeed")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected a second transport creation, got %d", n)
	}
}

func TestFactoryErrorFailsAttempt(t *testing.T) {
	mgr := NewManager(func() (chat.Transport, error) {
		return nil, errors.New("no database")
	}, &fakePairer{}, fastConfig())

	if mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should fail when the handle cannot be created")
	}
	if mgr.Phase() != Failed {
		t.Errorf("expected Failed, got %s", mgr.Phase())
	}
}

func TestDisconnectResetsToUnstarted(t *testing.T) {
	transport := &fakeTransport{script: func(h chat.Handlers) { h.Connected() }}
	var calls atomic.Int32
	mgr := NewManager(func() (chat.Transport, error) {
		calls.Add(1)
		return transport, nil
	}, &fakePairer{}, fastConfig())

	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should succeed")
	}

	transport.fire(func(h chat.Handlers) { h.Disconnected("network gone") })

	deadline := time.Now().Add(time.Second)
	for mgr.Phase() != Unstarted {
		if time.Now().After(deadline) {
			t.Fatalf("expected Unstarted after disconnect, got %s", mgr.Phase())
		}
		time.Sleep(time.Millisecond)
	}
	if mgr.Client() != nil {
		t.Error("handle should be discarded on disconnect")
	}

	// The next ensure re-creates everything from scratch.
	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("reconnect attempt should succeed")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected a fresh handle after disconnect, got %d creations", n)
	}
}

func TestFollowerWaitCeiling(t *testing.T) {
	transport := &fakeTransport{} // never signals anything
	cfg := fastConfig()
	cfg.WaitCeiling = 30 * time.Millisecond
	mgr := NewManager(func() (chat.Transport, error) { return transport, nil }, &fakePairer{}, cfg)

	start := time.Now()
	if mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should report pending as failure")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("caller blocked %v, ceiling was %v", elapsed, cfg.WaitCeiling)
	}
	// The attempt itself keeps running.
	if p := mgr.Phase(); p != Initializing {
		t.Errorf("attempt should still be in flight, got %s", p)
	}
}

func TestPairingCodeRelayedToChannel(t *testing.T) {
	pairer := &fakePairer{}
	sawPhase := make(chan Phase, 1)
	var mgr *Manager
	transport := &fakeTransport{
		script: func(h chat.Handlers) {
			h.PairingCode("tok-1")
			sawPhase <- mgr.Phase()
			h.Authenticated()
			h.Connected()
		},
	}
	mgr = NewManager(func() (chat.Transport, error) { return transport, nil }, pairer, fastConfig())

	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should succeed after pairing")
	}
	if codes := pairer.presentedCodes(); len(codes) != 1 || codes[0] != "tok-1" {
		t.Errorf("expected pairing code relayed once, got %v", codes)
	}
	if p := <-sawPhase; p != AwaitingPairing {
		t.Errorf("expected AwaitingPairing while token outstanding, got %s", p)
	}
}

func TestPairingChannelFailureFailsAttempt(t *testing.T) {
	pairer := &fakePairer{err: errors.New("no free port")}
	transport := &fakeTransport{
		script: func(h chat.Handlers) { h.PairingCode("tok-1") },
	}
	mgr := NewManager(func() (chat.Transport, error) { return transport, nil }, pairer, fastConfig())

	if mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should fail when the pairing channel cannot bind")
	}
	if mgr.Phase() != Failed {
		t.Errorf("expected Failed, got %s", mgr.Phase())
	}
}

func TestStatusSnapshot(t *testing.T) {
	transport := &fakeTransport{script: func(h chat.Handlers) { h.Connected() }}
	mgr := NewManager(func() (chat.Transport, error) { return transport, nil }, &fakePairer{}, fastConfig())

	st := mgr.Status()
	if st.Connected || st.Initializing || st.ClientCreated || st.PendingCode {
		t.Errorf("fresh manager should report everything false: %+v", st)
	}

	if !mgr.EnsureReady(context.Background()) {
		t.Fatal("EnsureReady should succeed")
	}
	st = mgr.Status()
	if !st.Connected || !st.ClientCreated {
		t.Errorf("ready manager should report connected with a handle: %+v", st)
	}
}
