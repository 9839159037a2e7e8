package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
	"imgtree/internal/domain/services"
)

// Registry keeps one workspace per signed-in user for the gateway.
// Workspaces are created and loaded on first use and evicted when idle.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	cfg  *Config
	idle time.Duration
	now  func() time.Time
	log  *slog.Logger
}

type entry struct {
	ws       *workspace
	lastUsed time.Time
}

// NewRegistry creates a registry. idle <= 0 disables eviction.
func NewRegistry(cfg *Config, idle time.Duration) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*entry),
		cfg:     cfg,
		idle:    idle,
		now:     time.Now,
		log:     logger,
	}
}

// Workspace returns the session's workspace, loading it from the backend the
// first time. Cached state is only handed out for the token that loaded it;
// any other token must load successfully from the backend first, so a claimed
// user id alone never reaches another session's folders or images.
func (r *Registry) Workspace(ctx context.Context, s models.Session) (services.WorkspaceService, error) {
	if !s.Valid() {
		return nil, &domain.UnauthorizedError{Message: "session required"}
	}

	r.mu.Lock()
	if e, ok := r.entries[s.UserID]; ok && e.ws.currentSession().Token == s.Token {
		e.lastUsed = r.now()
		r.mu.Unlock()
		return e.ws, nil
	}
	r.mu.Unlock()

	// load outside the lock; a concurrent first request may win the race
	ws := newWorkspace(s, r.cfg)
	if err := ws.Refresh(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[s.UserID]; ok && e.ws.currentSession().Token == s.Token {
		e.lastUsed = r.now()
		return e.ws, nil
	}
	r.entries[s.UserID] = &entry{ws: ws, lastUsed: r.now()}
	r.log.Debug("workspace loaded", "user_id", s.UserID)
	return ws, nil
}

// Drop forgets a user's workspace, e.g. on logout
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// Len returns the number of live workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Evict removes workspaces idle for longer than the idle timeout and
// returns how many were removed
func (r *Registry) Evict() int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			n++
		}
	}
	if n > 0 {
		r.log.Info("evicted idle workspaces", "count", n, "remaining", len(r.entries))
	}
	return n
}

// Run evicts idle workspaces periodically until ctx is done
func (r *Registry) Run(ctx context.Context) {
	if r.idle <= 0 {
		return
	}
	interval := r.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}
