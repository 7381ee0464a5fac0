package dummy

import (
	"sync"

	"github.com/barnybug/powermate/pubsub"
)

// Dummy Publisher for testing
type Publisher struct {
	Events []*pubsub.Event
	mu     sync.Mutex
}

func (self *Publisher) ID() string {
	return "dummy"
}

func (self *Publisher) Emit(ev *pubsub.Event) {
	self.mu.Lock()
	self.Events = append(self.Events, ev)
	self.mu.Unlock()
}

// Published returns a copy of the events emitted so far.
func (self *Publisher) Published() []*pubsub.Event {
	self.mu.Lock()
	defer self.mu.Unlock()
	return append([]*pubsub.Event(nil), self.Events...)
}
