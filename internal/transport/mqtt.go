package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

// Connect opens an MQTT connection to broker and waits for it to complete.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

// MQTTPublisher sends each reading as JSON on a fixed topic.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

func NewMQTTPublisher(client mqtt.Client, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

func (p *MQTTPublisher) Name() string { return "mqtt" }

func (p *MQTTPublisher) Publish(ctx context.Context, r domain.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish %s: %w", p.topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FaultTrigger is implemented by the session.
type FaultTrigger interface {
	TriggerFault()
}

// SubscribeFaults arms a fault injection whenever a fault command arrives on topic.
func SubscribeFaults(client mqtt.Client, topic string, trigger FaultTrigger) error {
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if !ParseFaultCommand(msg.Payload()) {
			log.Debug().Str("topic", msg.Topic()).Msg("ignoring control message")
			return
		}
		log.Warn().Str("topic", msg.Topic()).Msg("fault injection requested")
		trigger.TriggerFault()
	}
	if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

// ParseFaultCommand accepts an empty payload, "1", "true", "on", "fault" or a
// JSON object {"fault": true}.
func ParseFaultCommand(payload []byte) bool {
	s := strings.ToLower(strings.TrimSpace(string(payload)))
	switch s {
	case "", "1", "true", "on", "fault":
		return true
	}
	var cmd struct {
		Fault bool `json:"fault"`
	}
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return false
	}
	return cmd.Fault
}

// DecodeReading parses a JSON reading as produced by the publishers.
func DecodeReading(payload []byte) (domain.Reading, error) {
	var r domain.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return domain.Reading{}, fmt.Errorf("decode reading: %w", err)
	}
	if r.FaultStatus == "" {
		r.FaultStatus = domain.StatusNormal
	}
	return r, nil
}
