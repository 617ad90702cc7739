// Package ha implements the Home Assistant MQTT discovery protocol for a
// memory-constrained node that exposes one or more entities (lights,
// switches, sensors, tag scanners) to a hub.
//
// The package covers the shared machinery every entity kind is built on:
//
//   - Topic addressing: <prefix>/<kind>/<unique_id>/<suffix>, derived on
//     demand and never stored.
//   - Two-phase discovery serialization: a length pass sizes a bounded
//     Buffer exactly, then a write pass fills it. Both passes drive the same
//     emission routine through a counting sink and a writing sink.
//   - Per-trait cached state with a single observer slot, local setters with
//     change detection, and inbound command dispatch.
//   - Reconnect resynchronization: config, availability, subscriptions and,
//     for non-retained entities, the cached state of every trait.
//
// # Concurrency
//
// Nothing in this package is safe for concurrent use. All calls for a Node
// and its entities must be made from a single goroutine (see package loop).
// Observers run synchronously inside the call that changed the state.
//
// # Usage
//
//	dev, _ := ha.DeviceInfo{Identifiers: []string{"node-01"}, Name: "Garage"}.Serialize()
//	node := ha.NewNode(transport, dev)
//
//	light := ha.NewLight("garage_light", ha.LightBrightness)
//	light.SetName("Garage Light")
//	light.OnStateChanged(func(on bool) { relay.Set(on) })
//	node.Add(light)
//
//	// from the transport's event step:
//	node.HandleConnected()
//	node.HandleMessage(topic, payload)
package ha
