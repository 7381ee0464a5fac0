package mqtt

import (
	"strings"
	"sync"

	"github.com/barnybug/powermate/pubsub"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const prefix = "gohome/"

type eventChannel struct {
	C      chan *pubsub.Event
	topics []pubsub.Topic
}

// Subscriber struct
type Subscriber struct {
	broker         *Broker
	channels       []eventChannel
	channelsLock   sync.Mutex
	topicCount     map[string]int
	topicCountLock sync.RWMutex
}

func NewSubscriber(broker *Broker) *Subscriber {
	return &Subscriber{broker: broker, topicCount: map[string]int{}}
}

func (self *Subscriber) ID() string {
	return self.broker.ID()
}

func (self *Subscriber) publishHandler(client MQTT.Client, msg MQTT.Message) {
	topic := strings.TrimPrefix(msg.Topic(), prefix)
	event := pubsub.Parse(string(msg.Payload()), topic)
	if event == nil {
		return
	}
	event.SetRetained(msg.Retained())
	self.dispatch(topic, event)
}

func (self *Subscriber) dispatch(topic string, event *pubsub.Event) {
	self.channelsLock.Lock()
	defer self.channelsLock.Unlock()
	for _, ch := range self.channels {
		for _, t := range ch.topics {
			if t.Match(topic) {
				ch.C <- event
				break
			}
		}
	}
}

func (self *Subscriber) connectHandler(client MQTT.Client) {
	// (re)subscribe when (re)connected
	subs := map[string]byte{}
	self.topicCountLock.RLock()
	for topic := range self.topicCount {
		subs[topic] = 1 // QOS
	}
	self.topicCountLock.RUnlock()

	if len(subs) > 0 {
		Logger().Info("connected, subscribing", zap.Int("topics", len(subs)))
		// nil = all messages go to the default handler
		if token := client.SubscribeMultiple(subs, nil); token.Wait() && token.Error() != nil {
			Logger().Error("subscribe failed", zap.Error(token.Error()))
		}
	}
}

func topicToMqtt(topic pubsub.Topic) string {
	switch topic := topic.(type) {
	case *pubsub.AllTopic:
		return prefix + "#"
	case *pubsub.ExactTopic:
		return prefix + topic.Exact
	case *pubsub.PrefixTopic:
		return prefix + topic.Prefix + "/#"
	}
	Logger().Panic("topic type unsupported")
	return ""
}

func (self *Subscriber) addChannel(topics []pubsub.Topic) eventChannel {
	// subscribe topics not yet subscribed to
	subs := map[string]byte{}
	self.topicCountLock.Lock()
	for _, topic := range topics {
		t := topicToMqtt(topic)
		if _, exists := self.topicCount[t]; !exists {
			subs[t] = 1 // QOS
		}
		self.topicCount[t] += 1
	}
	self.topicCountLock.Unlock()

	ch := eventChannel{
		C:      make(chan *pubsub.Event, 16),
		topics: topics,
	}
	self.channelsLock.Lock()
	self.channels = append(self.channels, ch)
	self.channelsLock.Unlock()

	if len(subs) > 0 && self.broker.client != nil {
		if token := self.broker.client.SubscribeMultiple(subs, nil); token.Wait() && token.Error() != nil {
			Logger().Error("subscribe failed", zap.Error(token.Error()))
		}
	}

	return ch
}

func (self *Subscriber) Subscribe(topics ...pubsub.Topic) <-chan *pubsub.Event {
	return self.addChannel(topics).C
}

func (self *Subscriber) Close(channel <-chan *pubsub.Event) {
	self.channelsLock.Lock()
	defer self.channelsLock.Unlock()
	var channels []eventChannel
	for _, ch := range self.channels {
		if channel != (<-chan *pubsub.Event)(ch.C) {
			channels = append(channels, ch)
			continue
		}
		for _, topic := range ch.topics {
			t := topicToMqtt(topic)
			self.topicCountLock.Lock()
			self.topicCount[t] -= 1
			current := self.topicCount[t]
			if current == 0 {
				delete(self.topicCount, t)
			}
			self.topicCountLock.Unlock()
			if current == 0 && self.broker.client != nil {
				if token := self.broker.client.Unsubscribe(t); token.Wait() && token.Error() != nil {
					Logger().Error("unsubscribe failed", zap.Error(token.Error()))
				}
			}
		}
		close(ch.C)
	}
	self.channels = channels
}
