package app

import (
	"fmt"
	"sync"

	"github.com/bft-labs/walletscope/internal/ports"
)

// Session storage keys.
const (
	SessionIDKey  = "session-storage-id"
	CurrentURLKey = "current-url"
)

// ResolveSessionID returns the session id from session storage, creating
// and storing one with newID when absent.
func ResolveSessionID(storage ports.Storage, newID func() string) (string, error) {
	if id, ok := storage.Get(SessionIDKey); ok && id != "" {
		return id, nil
	}

	id := newID()
	if err := storage.Set(SessionIDKey, id); err != nil {
		return "", fmt.Errorf("persist session id: %w", err)
	}
	return id, nil
}

// SessionState holds the mutable facts shared by the observers: the
// tracked wallet, the last recorded page and the listener table.
//
// Every method is a single critical section. Handlers that read and then
// write use the compound methods (ClearWallet, SwapPageURL) so no other
// handler can observe a partial update.
type SessionState struct {
	mu        sync.Mutex
	account   string
	chainID   string
	pageURL   string
	listeners map[string]*ports.Listener
}

// NewSessionState creates state with pageURL as the last recorded page.
func NewSessionState(pageURL string) *SessionState {
	return &SessionState{
		pageURL:   pageURL,
		listeners: map[string]*ports.Listener{},
	}
}

// Account returns the tracked account, or "" when none.
func (s *SessionState) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// ChainID returns the tracked decimal chain id, or "" when none.
func (s *SessionState) ChainID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID
}

func (s *SessionState) SetAccount(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
}

func (s *SessionState) SetChainID(chainID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chainID = chainID
}

// SetWallet records both account and chain id.
func (s *SessionState) SetWallet(account, chainID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	s.chainID = chainID
}

// ClearWallet forgets the wallet and returns the values it held.
func (s *SessionState) ClearWallet() (account, chainID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, chainID = s.account, s.chainID
	s.account, s.chainID = "", ""
	return account, chainID
}

// PageURL returns the last recorded page.
func (s *SessionState) PageURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageURL
}

// SwapPageURL records url and reports whether it differs from the
// previously recorded page.
func (s *SessionState) SwapPageURL(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pageURL == url {
		return false
	}
	s.pageURL = url
	return true
}

// SetListener registers l under name and returns the handler it replaced.
func (s *SessionState) SetListener(name string, l *ports.Listener) *ports.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.listeners[name]
	s.listeners[name] = l
	return prev
}

// Listener returns the handler registered under name.
func (s *SessionState) Listener(name string) *ports.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listeners[name]
}

// RemoveListener clears name and returns the handler it held.
func (s *SessionState) RemoveListener(name string) *ports.Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.listeners[name]
	delete(s.listeners, name)
	return prev
}

// ListenerNames returns the names with a registered handler.
func (s *SessionState) ListenerNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.listeners))
	for name := range s.listeners {
		names = append(names, name)
	}
	return names
}
