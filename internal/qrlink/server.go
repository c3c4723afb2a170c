// Package qrlink serves the out-of-band pairing page. Tool callers are
// automated agents that cannot scan a QR code, so when the transport emits a
// pairing token the session manager hands it here: an ephemeral local web
// server renders the token as a QR image, opens the operator's browser, and
// polls readiness until the session connects.
package qrlink

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/browser"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultBasePort is the first candidate port for the ephemeral endpoint.
	DefaultBasePort = 3000
	// DefaultMaxPortTries bounds the port scan before the pairing channel
	// gives up (which fails only the current session attempt).
	DefaultMaxPortTries = 20

	qrImageSize = 300
)

// Server is the singleton pairing channel. At most one endpoint is bound at
// a time: presenting a superseding token reuses the active channel and just
// swaps the rendered image, so the open page picks it up on its next poll.
type Server struct {
	BasePort int
	MaxTries int

	readiness func() bool
	openURL   func(url string) error

	mu   sync.Mutex
	ln   net.Listener
	srv  *http.Server
	png  []byte
	addr string
}

// New creates a pairing channel. readiness is polled by the page's status
// endpoint and should report the session manager's current ready state.
func New(readiness func() bool) *Server {
	return &Server{
		BasePort:  DefaultBasePort,
		MaxTries:  DefaultMaxPortTries,
		readiness: readiness,
		openURL:   browser.OpenURL,
	}
}

// Present renders the pairing token and makes it reachable in the operator's
// browser. If the channel is already active the new token replaces the
// rendered image in place; no second endpoint is bound.
func (s *Server) Present(code string) error {
	png, err := qrcode.Encode(code, qrcode.Medium, qrImageSize)
	if err != nil {
		return fmt.Errorf("render pairing code: %w", err)
	}

	s.mu.Lock()
	if s.srv != nil {
		s.png = png
		s.mu.Unlock()
		slog.Info("pairing code superseded, page will refresh")
		return nil
	}

	ln, err := s.listen()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/qr.png", s.handleImage)
	mux.HandleFunc("/status", s.handleStatus)

	s.png = png
	s.ln = ln
	s.srv = &http.Server{Handler: mux}
	s.addr = fmt.Sprintf("http://%s", ln.Addr().String())
	srv, url := s.srv, s.addr
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Warn("pairing server stopped", "error", err)
		}
	}()

	slog.Info("opening browser for pairing code", "url", url)
	if err := s.openURL(url); err != nil {
		// The operator can still open the logged URL by hand.
		slog.Warn("could not open browser", "url", url, "error", err)
	}
	return nil
}

// listen binds the first free port starting from BasePort. Called with the
// mutex held.
func (s *Server) listen() (net.Listener, error) {
	var lastErr error
	for port := s.BasePort; port < s.BasePort+s.MaxTries; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free port in %d-%d for pairing page: %w",
		s.BasePort, s.BasePort+s.MaxTries-1, lastErr)
}

// Active reports whether the endpoint is currently bound.
func (s *Server) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srv != nil
}

// URL returns the active endpoint address, or "" when inactive.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return ""
	}
	return s.addr
}

// DismissAfter closes the channel after the given delay, leaving the page up
// long enough for the operator to see the connected state.
func (s *Server) DismissAfter(d time.Duration) {
	time.AfterFunc(d, s.Dismiss)
}

// Dismiss closes the endpoint and discards the channel. Idempotent.
func (s *Server) Dismiss() {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.ln = nil
	s.png = nil
	s.addr = ""
	s.mu.Unlock()
	if srv == nil {
		return
	}
	srv.Close()
	slog.Info("pairing server closed")
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, pageHTML)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	png := s.png
	s.mu.Unlock()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"connected": s.readiness()})
}
