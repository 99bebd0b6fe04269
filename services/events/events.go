// Package events is the contract between the game state machine and the
// transports that fan events out to lobby subscribers.
package events

import "sync"

const (
	GameStarted      = "game.started"
	PlayerJoined     = "player.joined"
	PlayerLeft       = "player.left"
	PlayerVoted      = "player.voted"
	VotingEnded      = "voting.ended"
	TurnAdvanced     = "turn.advanced"
	VoteNowUpdated   = "vote_now.updated"
	RerollUpdated    = "reroll.updated"
	WordRerolled     = "word.rerolled"
	WordRerollFailed = "word.reroll_failed"
	SettingsUpdated  = "settings.updated"
	MessageSent      = "message.sent"
)

// Event is one domain event. Except names a player that must not receive
// it (usually the actor). When Recipients is non-empty only those players
// receive it.
type Event struct {
	Name       string `json:"name"`
	Payload    any    `json:"payload"`
	Except     uint   `json:"-"`
	Recipients []uint `json:"-"`
}

// Publisher delivers events to every subscriber of topic. Delivery is
// fire-and-forget; the topic is the lobby code.
type Publisher interface {
	Publish(topic string, event Event)
}

// Published is an event as seen by a Recorder.
type Published struct {
	Topic string
	Event Event
}

// Recorder is an in-memory Publisher. It backs tests and the no-transport
// mode of the CLI.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(topic string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Event: event})
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// Named returns the published events with the given name, in order.
func (r *Recorder) Named(name string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, p := range r.events {
		if p.Event.Name == name {
			out = append(out, p.Event)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
