package mqtt

import (
	"github.com/barnybug/powermate/pubsub"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Publisher for mqtt
type Publisher struct {
	broker string
	client MQTT.Client
}

// ID of Publisher
func (pub *Publisher) ID() string {
	return "mqtt: " + pub.broker
}

// Emit an event
func (pub *Publisher) Emit(ev *pubsub.Event) {
	// put all topics under gohome/
	topic := "gohome/" + ev.Topic
	token := pub.client.Publish(topic, 1, ev.Retained, ev.Bytes())
	if token.Wait() && token.Error() != nil {
		Logger().Error("publish failed", zap.String("topic", topic), zap.Error(token.Error()))
	}
}
