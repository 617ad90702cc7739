package mqttv5

import (
	"context"
	"errors"
	"testing"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqtt"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		ProtocolVersion: 5,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "graylogic-node-v5-test",
		},
		QoS:       1,
		KeepAlive: 20,
	}
}

func TestNewClient_Config(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "node"
	cfg.Auth.Password = "secret"
	cfg.Broker.TLS = true

	client, err := NewClient(cfg, &mqtt.Will{Topic: "homeassistant/node-01/avty_t", Payload: []byte("offline")}, mqtt.Hooks{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	pc := client.pahoCfg

	if len(pc.ServerUrls) != 1 || pc.ServerUrls[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("ServerUrls = %v, want [ssl://127.0.0.1:1883]", pc.ServerUrls)
	}
	if pc.KeepAlive != 20 {
		t.Errorf("KeepAlive = %d, want 20", pc.KeepAlive)
	}
	if pc.ClientConfig.ClientID != "graylogic-node-v5-test" {
		t.Errorf("ClientID = %q", pc.ClientConfig.ClientID)
	}
	if pc.ConnectUsername != "node" || string(pc.ConnectPassword) != "secret" {
		t.Errorf("credentials = %q/%q", pc.ConnectUsername, pc.ConnectPassword)
	}
	if pc.TlsCfg == nil {
		t.Error("expected TLS config")
	}
	if pc.WillMessage == nil || pc.WillMessage.Topic != "homeassistant/node-01/avty_t" || !pc.WillMessage.Retain || pc.WillMessage.QoS != 1 {
		t.Errorf("WillMessage = %+v, want retained QoS 1 will", pc.WillMessage)
	}
}

func TestNewClient_NoWill(t *testing.T) {
	client, err := NewClient(testConfig(), nil, mqtt.Hooks{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.pahoCfg.WillMessage != nil {
		t.Error("WillMessage set without a will")
	}
	if client.pahoCfg.ConnectUsername != "" {
		t.Error("credentials set without a username")
	}
}

func TestClient_NotConnected(t *testing.T) {
	client, err := NewClient(testConfig(), nil, mqtt.Hooks{OnMessage: func(string, []byte) error { return nil }})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"publish empty topic", client.Publish("", []byte("x"), true), mqtt.ErrInvalidTopic},
		{"publish invalid qos", client.PublishQoS("a/b", nil, 3, false), mqtt.ErrInvalidQoS},
		{"publish too large", client.Publish("a/b", make([]byte, mqtt.MaxPayloadSize+1), false), mqtt.ErrPayloadTooLarge},
		{"publish not connected", client.Publish("a/b", []byte("ON"), true), mqtt.ErrNotConnected},
		{"subscribe empty topic", client.Subscribe(""), mqtt.ErrInvalidTopic},
		{"subscribe not connected", client.Subscribe("a/b"), mqtt.ErrNotConnected},
		{"health check", client.HealthCheck(context.Background()), mqtt.ErrNotConnected},
		{"close before connect", client.Close(), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.wantErr) {
				t.Errorf("error = %v, want %v", tt.err, tt.wantErr)
			}
		})
	}
}

func TestClient_Events(t *testing.T) {
	var connects, losses int
	type msg struct{ topic, payload string }
	var got []msg

	client, err := NewClient(testConfig(), nil, mqtt.Hooks{
		OnConnect:        func() { connects++ },
		OnConnectionLost: func(error) { losses++ },
		OnMessage: func(topic string, payload []byte) error {
			if topic == "panic" {
				panic("bad handler")
			}
			got = append(got, msg{topic, string(payload)})
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	client.handleConnect(nil)
	if connects != 1 {
		t.Errorf("OnConnect calls = %d, want 1", connects)
	}

	handled, err := client.handlePublish(paho.PublishReceived{Packet: &paho.Publish{Topic: "homeassistant/switch/pump/cmd_t", Payload: []byte("OFF")}})
	if !handled || err != nil {
		t.Errorf("handlePublish() = %v, %v", handled, err)
	}
	if len(got) != 1 || got[0] != (msg{"homeassistant/switch/pump/cmd_t", "OFF"}) {
		t.Errorf("messages = %+v", got)
	}

	// A panicking hook is recovered.
	client.handlePublish(paho.PublishReceived{Packet: &paho.Publish{Topic: "panic"}})

	client.handleDisconnect(errors.New("gone"))
	client.handleDisconnect(errors.New("gone again"))
	if losses != 1 {
		t.Errorf("OnConnectionLost calls = %d, want 1", losses)
	}
}

// The connection manager handed to the connect callback is usable before
// Connect has stored its own copy.
func TestClient_ConnectStoresManager(t *testing.T) {
	var connects int
	client, err := NewClient(testConfig(), nil, mqtt.Hooks{
		OnConnect: func() { connects++ },
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.manager() != nil {
		t.Fatal("manager() != nil before connect")
	}

	cm := &autopaho.ConnectionManager{}
	client.handleConnect(cm)

	if got := client.manager(); got != cm {
		t.Errorf("manager() = %p, want %p", got, cm)
	}
	if !client.IsConnected() || connects != 1 {
		t.Errorf("IsConnected() = %v, connects = %d", client.IsConnected(), connects)
	}
}

func TestClient_ConnectAfterClose(t *testing.T) {
	var connects int
	client, err := NewClient(testConfig(), nil, mqtt.Hooks{
		OnConnect: func() { connects++ },
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	client.handleConnect(&autopaho.ConnectionManager{})

	if client.manager() != nil || client.IsConnected() || connects != 0 {
		t.Errorf("late connect revived a closed client: connected=%v connects=%d", client.IsConnected(), connects)
	}
}
