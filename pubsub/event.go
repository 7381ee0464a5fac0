package pubsub

import (
	"encoding/json"
	"fmt"
	"time"
)

type Fields map[string]interface{}

type Event struct {
	Topic     string
	Timestamp time.Time
	Fields    Fields
	Retained  bool
}

func NewEvent(topic string, fields Fields) *Event {
	if fields == nil {
		fields = Fields{}
	}
	timestamp := time.Now().UTC()
	if ts, ok := fields["timestamp"].(string); ok {
		delete(fields, "timestamp")
		timestamp, _ = time.Parse(TimeFormat, ts)
	}
	return &Event{Topic: topic, Timestamp: timestamp, Fields: fields}
}

// NewCommand creates a command for a device, sent on command/<device>.
func NewCommand(device string, command string) *Event {
	fields := Fields{
		"device":  device,
		"command": command,
	}
	return NewEvent(fmt.Sprintf("command/%s", device), fields)
}

const TimeFormat = "2006-01-02 15:04:05.000000"

func (event *Event) Map() map[string]interface{} {
	data := make(map[string]interface{})
	data["topic"] = event.Topic
	data["timestamp"] = event.Timestamp.Format(TimeFormat)
	for k, v := range event.Fields {
		data[k] = v
	}
	return data
}

func (event *Event) Bytes() []byte {
	v, _ := json.Marshal(event.Map())
	return v
}

func (event *Event) String() string {
	return string(event.Bytes())
}

func (event *Event) StringField(name string) string {
	ret, _ := event.Fields[name].(string)
	return ret
}

// IntField reads a numeric field. Parsed events carry float64, locally
// created ones may carry any int type.
func (event *Event) IntField(name string) int64 {
	switch v := event.Fields[name].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

func (event *Event) SetRetained(retained bool) {
	event.Retained = retained
}

func (event *Event) SetField(name string, value interface{}) {
	event.Fields[name] = value
}

func (event *Event) Target() string {
	return event.StringField("target")
}

func (event *Event) Device() string {
	return event.StringField("device")
}

func (event *Event) Source() string {
	return event.StringField("source")
}

func (event *Event) Command() string {
	return event.StringField("command")
}

// Parse an event from json. If the message has no topic field, topic is
// used instead.
func Parse(msg string, topic string) *Event {
	var fields Fields
	err := json.Unmarshal([]byte(msg), &fields)
	if err != nil {
		return nil
	}
	if t, ok := fields["topic"].(string); ok {
		topic = t
		delete(fields, "topic")
	}
	if topic == "" {
		return nil
	}
	return NewEvent(topic, fields)
}
