// Package mqtt bridges the engine onto a broker so home-automation
// controllers can drive it without the HTTP API. Inbound topics map onto the
// same core operations the web layer uses; stats go out retained so late
// subscribers see the current state immediately.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/cosmicled/cosmicled/internal/config"
	"github.com/cosmicled/cosmicled/internal/render"
)

const statsInterval = 5 * time.Second

// Bridge connects the config store and registry to an MQTT broker.
type Bridge struct {
	cfg    config.MQTTCfg
	store  *config.Store
	reg    *render.Registry
	eng    *render.Engine
	client paho.Client
}

func NewBridge(cfg config.MQTTCfg, store *config.Store, reg *render.Registry, eng *render.Engine) *Bridge {
	if cfg.Prefix == "" {
		cfg.Prefix = "cosmicled"
	}
	return &Bridge{cfg: cfg, store: store, reg: reg, eng: eng}
}

func (b *Bridge) topic(suffix string) string {
	return b.cfg.Prefix + "/" + suffix
}

// Run connects, subscribes, and publishes stats until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	opts := paho.NewClientOptions()
	opts.AddBroker(b.cfg.Broker)
	opts.SetClientID(b.cfg.ClientID)
	if b.cfg.Username != "" {
		opts.SetUsername(b.cfg.Username)
		opts.SetPassword(b.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(c paho.Client) {
		log.Info().Str("broker", b.cfg.Broker).Msg("mqtt connected")
		b.subscribe(c)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost, reconnecting")
	}

	b.client = paho.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: connect to %s timed out", b.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect: %w", err)
	}

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.client.Disconnect(250)
			return ctx.Err()
		case <-ticker.C:
			b.publishStats()
		}
	}
}

func (b *Bridge) subscribe(c paho.Client) {
	c.Subscribe(b.topic("config/set"), b.cfg.QoS, func(_ paho.Client, m paho.Message) {
		result := b.handleConfigSet(m.Payload())
		if out, err := json.Marshal(result); err == nil {
			c.Publish(b.topic("config/result"), 0, false, out)
		}
	})
	c.Subscribe(b.topic("program/set"), b.cfg.QoS, func(_ paho.Client, m paho.Message) {
		if err := b.handleProgramSet(m.Payload()); err != nil {
			log.Warn().Err(err).Msg("mqtt program activation failed")
		}
	})
}

type updateResult struct {
	Applied  []string `json:"applied"`
	Rejected []string `json:"rejected"`
	Error    string   `json:"error,omitempty"`
}

func (b *Bridge) handleConfigSet(payload []byte) updateResult {
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return updateResult{Applied: []string{}, Rejected: []string{}, Error: "invalid JSON payload"}
	}
	applied, rejected := b.store.Update(fields)
	if applied == nil {
		applied = []string{}
	}
	if rejected == nil {
		rejected = []string{}
	}
	return updateResult{Applied: applied, Rejected: rejected}
}

// handleProgramSet accepts either a bare program name or {"name": "..."}.
func (b *Bridge) handleProgramSet(payload []byte) error {
	name := string(payload)
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(payload, &req); err == nil && req.Name != "" {
		name = req.Name
	}
	if name == "" {
		return fmt.Errorf("mqtt: empty program name")
	}
	if err := b.reg.Activate(name); err != nil {
		return err
	}
	b.store.Update(map[string]any{"active_program": name})
	return nil
}

func (b *Bridge) publishStats() {
	stats := b.eng.Stats()
	out, err := json.Marshal(stats)
	if err != nil {
		return
	}
	// Retained so controllers joining later get the latest sample.
	b.client.Publish(b.topic("stats"), 0, true, out)
}
