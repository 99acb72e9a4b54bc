package service

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CommitLimiter limita cuantos entrenamientos puede lanzar un usuario en una ventana.
// Allow consume cupo: solo se llama cuando el commit va a crear un entrenamiento.
type CommitLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type memoryCommitLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	now    func() time.Time
	hits   map[string][]time.Time
}

// NewMemoryCommitLimiter crea un limiter de ventana deslizante en memoria.
func NewMemoryCommitLimiter(window time.Duration, max int) CommitLimiter {
	return newMemoryCommitLimiter(window, max, time.Now)
}

func newMemoryCommitLimiter(window time.Duration, max int, now func() time.Time) *memoryCommitLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	return &memoryCommitLimiter{
		window: window,
		max:    max,
		now:    now,
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryCommitLimiter) Allow(_ context.Context, key string) bool {
	key = strings.TrimSpace(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now().UTC()
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}
