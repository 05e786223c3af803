package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/111KartoFan111/AiAssistant/repository"
)

const sweepInterval = time.Minute

// ActiveSessionRegistry tracks interviews that are currently being driven by
// a client. A session is added on start, touched on every submitted answer,
// and removed on completion. Sessions idle past the abandonment window are
// force-completed so they stop counting as in progress forever.
type ActiveSessionRegistry struct {
	store        repository.InterviewStore
	abandonAfter time.Duration

	lastActivity map[string]time.Time
	mutex        sync.RWMutex

	done chan struct{}
	once sync.Once
}

func NewActiveSessionRegistry(store repository.InterviewStore, abandonAfter time.Duration) *ActiveSessionRegistry {
	registry := &ActiveSessionRegistry{
		store:        store,
		abandonAfter: abandonAfter,
		lastActivity: make(map[string]time.Time),
		done:         make(chan struct{}),
	}

	go registry.startSweeper()

	return registry
}

func (r *ActiveSessionRegistry) Add(sessionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.lastActivity[sessionID] = time.Now()
	slog.Info("Session registered for abandonment tracking", "session_id", sessionID)
}

func (r *ActiveSessionRegistry) Touch(sessionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.lastActivity[sessionID]; exists {
		r.lastActivity[sessionID] = time.Now()
	}
}

func (r *ActiveSessionRegistry) Remove(sessionID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.lastActivity, sessionID)
}

// Active reports whether a session is currently tracked.
func (r *ActiveSessionRegistry) Active(sessionID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, exists := r.lastActivity[sessionID]
	return exists
}

// Stop shuts down the background sweeper.
func (r *ActiveSessionRegistry) Stop() {
	r.once.Do(func() { close(r.done) })
}

func (r *ActiveSessionRegistry) startSweeper() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweepAbandoned()
		case <-r.done:
			return
		}
	}
}

func (r *ActiveSessionRegistry) sweepAbandoned() {
	r.mutex.RLock()
	now := time.Now()
	var abandoned []string
	for sessionID, last := range r.lastActivity {
		if now.Sub(last) > r.abandonAfter {
			abandoned = append(abandoned, sessionID)
		}
	}
	r.mutex.RUnlock()

	for _, sessionID := range abandoned {
		slog.Info("Session abandoned, force completing", "session_id", sessionID)
		r.forceComplete(sessionID)
	}
}

func (r *ActiveSessionRegistry) forceComplete(sessionID string) {
	ctx := context.Background()

	session, err := r.store.GetInterviewSession(ctx, sessionID)
	if err != nil {
		slog.Error("Failed to load abandoned session", "session_id", sessionID, "error", err)
		return
	}
	if session != nil && session.Status == models.StatusInProgress {
		session.Status = models.StatusCompleted
		if err := r.store.UpdateInterviewSession(ctx, session); err != nil {
			slog.Error("Failed to complete abandoned session", "session_id", sessionID, "error", err)
			return
		}
	}

	r.Remove(sessionID)
}
