package broadcast

import (
	"context"
	"encoding/json"
	"strings"
)

// MQTTPublisher is the subset of common/mqtt.Client the sink needs.
type MQTTPublisher interface {
	Publish(topic string, retained bool, payload []byte) error
}

// MQTTSink publishes each event's JSON frame on <prefix>/<topic>.
type MQTTSink struct {
	client MQTTPublisher
	prefix string
}

func NewMQTTSink(client MQTTPublisher, prefix string) *MQTTSink {
	return &MQTTSink{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

var _ Publisher = (*MQTTSink)(nil)

// Topic MQTT topic used for an event topic.
func (s *MQTTSink) Topic(eventTopic string) string {
	if s.prefix == "" {
		return eventTopic
	}
	return s.prefix + "/" + eventTopic
}

func (s *MQTTSink) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.client.Publish(s.Topic(ev.Topic), false, payload)
}
