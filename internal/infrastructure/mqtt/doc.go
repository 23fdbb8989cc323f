// Package mqtt provides MQTT client connectivity for Gray Logic Assistant.
//
// MQTT is the bus between the assistant service and the device bridges:
// resolved service calls are published to service topics, and bridges
// publish entity state back on per-entity state topics. The package manages:
//
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS guarantees and payload limits
//   - Subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) for offline detection
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllEntityStates(), 1,
//	    func(topic string, payload []byte) error {
//	        // update registry
//	        return nil
//	    })
//
//	topic := mqtt.Topics{}.ServiceCall("turn_on")
//	client.Publish(topic, []byte(`{"entity_id":"light.kitchen"}`), 1, false)
package mqtt
