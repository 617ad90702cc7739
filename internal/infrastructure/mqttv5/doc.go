// Package mqttv5 provides the MQTT 5 transport of a Gray Logic node on
// paho.golang's autopaho connection manager.
//
// Client has the same surface as mqtt.Client (Hooks, Will, Publish,
// Subscribe, Connect, Close) so the daemon picks one by
// mqtt.protocol_version and wires both identically. Errors are the
// sentinels of package mqtt.
//
// autopaho owns reconnection. Every (re)connect fires Hooks.OnConnect;
// sessions expire on disconnect, so the node resubscribes each time.
package mqttv5
