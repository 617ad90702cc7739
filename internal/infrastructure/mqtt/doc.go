// Package mqtt provides the MQTT 3.1.1 transport of a Gray Logic node.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Subscriptions delivering to a single message hook
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The node speaks the Home Assistant discovery protocol over this client:
//
//	ha.Node -> mqtt.Client -> broker <- Home Assistant
//
// Client satisfies ha.Transport. Connection events and inbound messages are
// delivered through Hooks on paho goroutines; the daemon forwards them onto
// the single goroutine that owns the entities.
//
// # Security Considerations
//
//   - TLS should be enabled outside a trusted LAN (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//
// # Usage
//
//	client := mqtt.NewClient(cfg.MQTT, &mqtt.Will{Topic: node.WillTopic(), Payload: []byte("offline")}, mqtt.Hooks{
//	    OnConnect: func() { loop.TryPost(func() { node.HandleConnected() }) },
//	    OnMessage: func(topic string, payload []byte) error {
//	        return loop.TryPost(func() { node.HandleMessage(topic, payload) })
//	    },
//	})
//	if err := client.Connect(ctx); err != nil {
//	    log.Print(err) // keeps retrying in the background
//	}
//	defer client.Close()
//
// MQTT 5 brokers are served by package mqttv5 with the same surface.
package mqtt
