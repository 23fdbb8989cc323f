package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/config"
)

// disconnectedClient builds a Client that behaves as if the broker is gone.
// The nil paho client is never touched because IsConnected short-circuits
// on the connected flag.
func disconnectedClient() *Client {
	return &Client{
		cfg:           config.MQTTConfig{QoS: 1},
		subscriptions: make(map[string]subscription),
	}
}

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"service call", topics.ServiceCall("turn_on"), "assistant/service/turn_on"},
		{"entity state", topics.EntityState("light.kitchen"), "assistant/entity/light.kitchen/state"},
		{"system status", topics.SystemStatus(), "assistant/system/status"},
		{"all entity states", topics.AllEntityStates(), "assistant/entity/+/state"},
		{"all service calls", topics.AllServiceCalls(), "assistant/service/+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions(t *testing.T) {
	t.Run("plain tcp broker", func(t *testing.T) {
		cfg := config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 1883, ClientID: "test-client"},
		}
		opts := buildClientOptions(cfg)
		if len(opts.Servers) != 1 {
			t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
		}
		if got := opts.Servers[0].String(); got != "tcp://broker.local:1883" {
			t.Errorf("broker URL = %q, want tcp://broker.local:1883", got)
		}
		if opts.ClientID != "test-client" {
			t.Errorf("ClientID = %q", opts.ClientID)
		}
	})

	t.Run("tls broker uses ssl scheme", func(t *testing.T) {
		cfg := config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 8883, TLS: true},
		}
		opts := buildClientOptions(cfg)
		if got := opts.Servers[0].Scheme; got != "ssl" {
			t.Errorf("scheme = %q, want ssl", got)
		}
		if opts.TLSConfig == nil {
			t.Error("TLSConfig not set")
		}
	})

	t.Run("credentials applied when present", func(t *testing.T) {
		cfg := config.MQTTConfig{
			Broker: config.MQTTBrokerConfig{Host: "h", Port: 1883},
			Auth:   config.MQTTAuthConfig{Username: "user", Password: "pass"},
		}
		opts := buildClientOptions(cfg)
		if opts.Username != "user" || opts.Password != "pass" {
			t.Error("credentials not applied")
		}
	})
}

func TestConfigureLWT(t *testing.T) {
	cfg := config.MQTTConfig{Broker: config.MQTTBrokerConfig{Host: "h", Port: 1883, ClientID: "assistant-1"}}
	opts := buildClientOptions(cfg)
	configureLWT(opts, "assistant-1")

	if opts.WillTopic != "assistant/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	if !opts.WillRetained {
		t.Error("will message should be retained")
	}
	payload := string(opts.WillPayload)
	if !strings.Contains(payload, `"status":"offline"`) {
		t.Errorf("will payload missing offline status: %s", payload)
	}
	if !strings.Contains(payload, `"client_id":"assistant-1"`) {
		t.Errorf("will payload missing client id: %s", payload)
	}
}

func TestStatusPayloads(t *testing.T) {
	online := buildOnlinePayload("c1")
	if !strings.Contains(online, `"status":"online"`) {
		t.Errorf("online payload: %s", online)
	}
	offline := buildOfflinePayload("c1")
	if !strings.Contains(offline, `"reason":"graceful_shutdown"`) {
		t.Errorf("offline payload: %s", offline)
	}
}

func TestPublishValidation(t *testing.T) {
	c := disconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "t", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "t", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "t", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := disconnectedClient()
	handler := func(topic string, payload []byte) error { return nil }

	if err := c.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: %v", err)
	}
	if err := c.Subscribe("t", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("invalid qos: %v", err)
	}
	if err := c.Subscribe("t", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler: %v", err)
	}
	if err := c.Subscribe("t", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("not connected: %v", err)
	}
	if c.SubscriptionCount() != 0 {
		t.Errorf("failed subscribes should not be tracked, count = %d", c.SubscriptionCount())
	}
}

func TestHealthCheck(t *testing.T) {
	c := disconnectedClient()

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() with cancelled context = %v", err)
	}
}
