package mqtt

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/barnybug/powermate/pubsub"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
)

type Broker struct {
	broker     string
	client     MQTT.Client
	subscriber *Subscriber
}

func clientID(name string) string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("gohome/%s-%s-%d-%d", name, hostname, os.Getpid(), rand.Int())
}

// NewBroker connects to the mqtt server at url (eg. tcp://127.0.0.1:1883).
func NewBroker(url string, name string) (*Broker, error) {
	self := &Broker{broker: url}
	self.subscriber = NewSubscriber(self)

	opts := MQTT.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(clientID(name))
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetDefaultPublishHandler(self.subscriber.publishHandler)
	opts.SetOnConnectHandler(self.subscriber.connectHandler)

	self.client = MQTT.NewClient(opts)
	if token := self.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "mqtt connect %s", url)
	}
	return self, nil
}

func (self *Broker) ID() string {
	return "mqtt: " + self.broker
}

func (self *Broker) Subscriber() pubsub.Subscriber {
	return self.subscriber
}

func (self *Broker) Publisher() pubsub.Publisher {
	return &Publisher{broker: self.broker, client: self.client}
}

func (self *Broker) Close() {
	self.client.Disconnect(250)
}
