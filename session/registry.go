package session

import (
	"log/slog"
	"sync"

	"github.com/nstehr/wingman/config"
)

// Registry tracks live sessions so a config reload reaches all of them.
type Registry struct {
	mu       sync.Mutex
	cfg      config.Config
	sessions map[*Session]struct{}
}

func NewRegistry(cfg config.Config) *Registry {
	return &Registry{cfg: cfg, sessions: make(map[*Session]struct{})}
}

// Config is the configuration new sessions start with.
func (r *Registry) Config() config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reload makes cfg the config for new sessions and pushes its role
// thresholds into every live one. It returns how many sessions failed.
func (r *Registry) Reload(cfg config.Config) int {
	r.mu.Lock()
	r.cfg = cfg
	live := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()

	failed := 0
	for _, s := range live {
		if err := s.Reload(cfg); err != nil {
			slog.Error("failed to reload session", "error", err)
			failed++
		}
	}
	slog.Info("config reloaded", "sessions", len(live), "failed", failed)
	return failed
}
