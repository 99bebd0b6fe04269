package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const restartTimeout = 30 * time.Second

// AutoRestarter runs a restart for a lobby once a delay has passed after
// it finished. Scheduling the same lobby again replaces the pending timer.
type AutoRestarter struct {
	delay   time.Duration
	restart func(ctx context.Context, lobbyID uint) error

	mu      sync.Mutex
	timers  map[uint]*time.Timer
	stopped bool
}

func NewAutoRestarter(delay time.Duration, restart func(ctx context.Context, lobbyID uint) error) *AutoRestarter {
	return &AutoRestarter{
		delay:   delay,
		restart: restart,
		timers:  make(map[uint]*time.Timer),
	}
}

func (a *AutoRestarter) Schedule(lobbyID uint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if t, ok := a.timers[lobbyID]; ok {
		t.Stop()
	}
	a.timers[lobbyID] = time.AfterFunc(a.delay, func() { a.fire(lobbyID) })
}

func (a *AutoRestarter) Cancel(lobbyID uint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[lobbyID]; ok {
		t.Stop()
		delete(a.timers, lobbyID)
	}
}

// Pending reports how many restarts are waiting to fire.
func (a *AutoRestarter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.timers)
}

// Stop cancels every pending restart and refuses new ones.
func (a *AutoRestarter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}

func (a *AutoRestarter) fire(lobbyID uint) {
	a.mu.Lock()
	delete(a.timers, lobbyID)
	stopped := a.stopped
	a.mu.Unlock()
	if stopped {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), restartTimeout)
	defer cancel()
	if err := a.restart(ctx, lobbyID); err != nil {
		log.Warn().Err(err).Uint("lobby_id", lobbyID).Msg("auto-restart failed")
		return
	}
	log.Debug().Uint("lobby_id", lobbyID).Msg("auto-restart done")
}
