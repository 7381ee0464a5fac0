package dummy

import (
	"testing"

	"github.com/barnybug/powermate/pubsub"
	"github.com/stretchr/testify/assert"
)

var (
	_ pubsub.Publisher  = (*Publisher)(nil)
	_ pubsub.Subscriber = (*Subscriber)(nil)
	_ pubsub.Publisher  = (*Loopback)(nil)
	_ pubsub.Subscriber = (*Loopback)(nil)
)

func TestSubscriberReplaysMatching(t *testing.T) {
	sub := &Subscriber{Events: []*pubsub.Event{
		pubsub.NewEvent("query", nil),
		pubsub.NewEvent("powermate", nil),
		pubsub.NewCommand("dial.study", "on"),
	}}
	var topics []string
	for ev := range sub.Subscribe(pubsub.Exact("query"), pubsub.Prefix("command")) {
		topics = append(topics, ev.Topic)
	}
	assert.Equal(t, []string{"query", "command/dial.study"}, topics)
}

func TestPublisher(t *testing.T) {
	pub := &Publisher{}
	pub.Emit(pubsub.NewEvent("powermate", nil))
	assert.Len(t, pub.Published(), 1)
}

func TestLoopback(t *testing.T) {
	l := &Loopback{}
	ch := l.Subscribe(pubsub.Prefix("command"))
	l.Emit(pubsub.NewCommand("dial.study", "on"))
	l.Emit(pubsub.NewEvent("query", nil))
	ev := <-ch
	assert.Equal(t, "command/dial.study", ev.Topic)
	assert.Len(t, ch, 0)

	l.Close(ch)
	l.Close(ch)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, l.Subscriptions())
}
