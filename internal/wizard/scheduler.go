package wizard

import (
	"sync"
	"time"
)

// DefaultTickInterval reproduce ~8 segundos de entrenamiento simulado (100 ticks).
const DefaultTickInterval = 80 * time.Millisecond

// CancelFunc libera una tarea programada. Debe ser idempotente.
type CancelFunc func()

// Scheduler ejecuta fn periodicamente hasta que se cancele.
type Scheduler interface {
	Every(interval time.Duration, fn func()) CancelFunc
}

// TickerScheduler implementa Scheduler con un time.Ticker por tarea.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// select no tiene prioridad: si ya se cancelo, no correr fn.
				select {
				case <-done:
					return
				default:
				}
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}
