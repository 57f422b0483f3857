// Package mqtt provides MQTT client connectivity for LoRaWatch Core.
//
// This package manages:
//   - Connection to the broker ChirpStack's MQTT integration publishes on
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - In-order message delivery with panic-recovering handlers
//   - Last Will and Testament (LWT) for offline detection
//   - Retained state publishing for downstream consumers
//
// # Architecture
//
//	ChirpStack ──▶ broker ──▶ mqtt.Client ──▶ monitor.Dispatcher
//	                  ▲
//	                  └──── lorawatch/device/+/state, lorawatch/alert
//
// # Security Considerations
//
//   - Use TLS in production (cfg.Broker.TLS=true)
//   - Set the broker password via LORAWATCH_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(cfg.MQTT.EventTopic, 1, dispatcher.HandleMessage)
package mqtt
