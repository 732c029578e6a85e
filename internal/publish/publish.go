// Package publish streams captured frames to an MQTT broker as JSON.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/frame"
)

// Config selects the broker and topic for frame publishing.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Broker:   "tcp://localhost:1883",
		ClientID: "uls24ctl",
		Topic:    "uls24/frames",
		QoS:      1,
		Timeout:  5 * time.Second,
	}
}

// framePayload is the published JSON shape.
type framePayload struct {
	Channel           int     `json:"channel"`
	Dim               int     `json:"dim"`
	GainMode          int     `json:"gain_mode"`
	IntegrationTimeMS int     `json:"integration_time_ms"`
	CapturedAt        string  `json:"captured_at"`
	Rows              [][]int `json:"rows"`
}

// Publisher owns one broker connection.
type Publisher struct {
	client mqtt.Client
	cfg    Config
	log    zerolog.Logger
}

// Connect dials the broker and returns a ready publisher.
func Connect(cfg Config, log zerolog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetKeepAlive(30 * time.Second).
		SetConnectTimeout(cfg.Timeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("publish: connect %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("publish: connect %s: %w", cfg.Broker, err)
	}
	log.Info().Str("broker", cfg.Broker).Str("topic", cfg.Topic).Msg("mqtt connected")
	return &Publisher{client: client, cfg: cfg, log: log}, nil
}

// PublishFrame sends one completed frame to the configured topic.
func (p *Publisher) PublishFrame(fr *frame.Sensor) error {
	payload, err := json.Marshal(framePayload{
		Channel:           fr.Channel,
		Dim:               fr.Dim,
		GainMode:          fr.GainMode,
		IntegrationTimeMS: fr.IntegrationTimeMS,
		CapturedAt:        time.Now().UTC().Format(time.RFC3339),
		Rows:              fr.Rows(),
	})
	if err != nil {
		return fmt.Errorf("publish: marshal frame: %w", err)
	}

	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, false, payload)
	if !token.WaitTimeout(p.cfg.Timeout) {
		return fmt.Errorf("publish: %s: timeout", p.cfg.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %s: %w", p.cfg.Topic, err)
	}
	p.log.Debug().Str("topic", p.cfg.Topic).Int("dim", fr.Dim).Msg("frame published")
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
