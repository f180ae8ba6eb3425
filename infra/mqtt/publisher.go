// Package mqtt publishes market events to an MQTT broker for external
// consumers. Publishing is optional; the service only builds a publisher
// when a broker URL is configured.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Config holds MQTT connection settings. An empty Broker disables
// publishing.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "taximarket"
	}
	if c.Topic == "" {
		c.Topic = "taximarket/events"
	}
}

// Publisher forwards events to an MQTT topic as JSON payloads.
type Publisher struct {
	client paho.Client
	topic  string
}

// NewPublisher connects to the configured broker. The client id gets a
// random suffix so several simulations can share a broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])).
		SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout to %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &Publisher{client: client, topic: cfg.Topic}, nil
}

// Publish sends the event as JSON. The event type name is included so
// consumers can demultiplex.
func (p *Publisher) Publish(event any) error {
	payload, err := json.Marshal(map[string]any{
		"type":  fmt.Sprintf("%T", event),
		"event": event,
	})
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
