// Package influxdb provides InfluxDB connectivity for Gray Logic Assistant.
//
// It wraps the official influxdb-client-go v2 library for recording an
// audit trail of assistant activity: every command dispatched on behalf of
// the assistant and every entity state change observed on the bus.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteCommandAudit("light.kitchen", "turn_on")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Writes are non-blocking and batched; async errors surface through a
// callback set with SetOnError.
package influxdb
