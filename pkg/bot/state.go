// Package bot holds the message orchestrator, the owner command surface and
// the bot's runtime state.
package bot

import "sync"

// State is the bot's runtime toggle. When inactive the bot still records
// incoming messages and obeys owner commands but answers nobody.
type State struct {
	mu     sync.Mutex
	active bool
}

// NewState creates a State with the given initial activation.
func NewState(active bool) *State {
	return &State{active: active}
}

// Active reports whether the bot currently answers questions.
func (s *State) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive flips the activation toggle.
func (s *State) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}
