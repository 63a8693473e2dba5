// Package mqtt mirrors notifications and device states onto an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/notify"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
)

// Config holds broker settings.
type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Broker    string        `mapstructure:"broker"` // e.g. tcp://localhost:1883
	ClientID  string        `mapstructure:"client_id"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	BaseTopic string        `mapstructure:"base_topic"`
	QoS       byte          `mapstructure:"qos"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// client is the subset of the paho client the publisher uses.
type client interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// Publisher implements notify.Sink on top of MQTT.
type Publisher struct {
	client client
	cfg    Config
}

// Options builds paho client options with an offline will message.
func Options(cfg Config) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetWill(statusTopic(cfg.BaseTopic), payloadOffline, 0, true)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("MQTT connection lost")
	})
	return opts
}

// New creates a publisher for cfg. Call Connect before delivering.
func New(cfg Config) *Publisher {
	if cfg.BaseTopic == "" {
		cfg.BaseTopic = "homecare"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Publisher{client: pahomqtt.NewClient(Options(cfg)), cfg: cfg}
}

func statusTopic(base string) string {
	return base + "/status"
}

// NotificationTopic is where notifications are published.
func (p *Publisher) NotificationTopic() string {
	return p.cfg.BaseTopic + "/notifications"
}

// DeviceStateTopic is the retained state topic of one device, for example
// homecare/device/living_room/tv/state.
func (p *Publisher) DeviceStateTopic(k device.Key) string {
	return fmt.Sprintf("%s/device/%s/%s/state", p.cfg.BaseTopic, slug(string(k.Room)), slug(string(k.Type)))
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

func (p *Publisher) wait(tok pahomqtt.Token, op string) error {
	if !tok.WaitTimeout(p.cfg.Timeout) {
		return fmt.Errorf("mqtt %s timed out", op)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt %s: %w", op, err)
	}
	return nil
}

// Connect connects to the broker and announces the service online.
func (p *Publisher) Connect() error {
	if err := p.wait(p.client.Connect(), "connect"); err != nil {
		return err
	}
	return p.wait(p.client.Publish(statusTopic(p.cfg.BaseTopic), 0, true, payloadOnline), "publish")
}

// Deliver publishes n as JSON.
func (p *Publisher) Deliver(_ context.Context, n notify.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	return p.wait(p.client.Publish(p.NotificationTopic(), p.cfg.QoS, false, payload), "publish")
}

// PublishDevice publishes a device's state as a retained message.
func (p *Publisher) PublishDevice(rec device.Record) error {
	return p.wait(p.client.Publish(p.DeviceStateTopic(rec.Key()), p.cfg.QoS, true, string(rec.State)), "publish")
}

// DeviceSource is the event feed of the state manager.
type DeviceSource interface {
	Subscribe() chan device.Event
	Unsubscribe(ch chan device.Event)
	Snapshot() device.Snapshot
}

// Watch publishes the full matrix once, then every state change until ctx
// is cancelled.
func (p *Publisher) Watch(ctx context.Context, src DeviceSource) error {
	ch := src.Subscribe()
	defer src.Unsubscribe(ch)

	var errs []error
	for _, rec := range src.Snapshot().Devices {
		if err := p.PublishDevice(rec); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("Failed to publish initial device states")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if ev.Type != device.EventDeviceState || ev.Record == nil {
				continue
			}
			if err := p.PublishDevice(*ev.Record); err != nil {
				log.Warn().Err(err).Str("device", ev.Record.Key().String()).Msg("Failed to publish device state")
			}
		}
	}
}

// Close announces the service offline and disconnects.
func (p *Publisher) Close() {
	if err := p.wait(p.client.Publish(statusTopic(p.cfg.BaseTopic), 0, true, payloadOffline), "publish"); err != nil {
		log.Warn().Err(err).Msg("Failed to publish offline status")
	}
	p.client.Disconnect(250)
}
