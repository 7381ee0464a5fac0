package dummy

import (
	"sync"

	"github.com/barnybug/powermate/pubsub"
)

// Loopback is both a Publisher and a Subscriber: emitted events are
// delivered to its own matching subscriptions, like a broker would.
type Loopback struct {
	mu   sync.Mutex
	subs map[chan *pubsub.Event][]pubsub.Topic
}

func (l *Loopback) ID() string {
	return "loopback"
}

func (l *Loopback) Emit(ev *pubsub.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch, topics := range l.subs {
		for _, t := range topics {
			if t.Match(ev.Topic) {
				ch <- ev
				break
			}
		}
	}
}

func (l *Loopback) Subscribe(topics ...pubsub.Topic) <-chan *pubsub.Event {
	ch := make(chan *pubsub.Event, 16)
	l.mu.Lock()
	if l.subs == nil {
		l.subs = map[chan *pubsub.Event][]pubsub.Topic{}
	}
	l.subs[ch] = topics
	l.mu.Unlock()
	return ch
}

// Close the channel. Closing twice is a no-op.
func (l *Loopback) Close(channel <-chan *pubsub.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		if channel == (<-chan *pubsub.Event)(ch) {
			delete(l.subs, ch)
			close(ch)
		}
	}
}

// Subscriptions is the number of open subscriptions.
func (l *Loopback) Subscriptions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
