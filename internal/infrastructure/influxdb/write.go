package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteCommandAudit records a dispatched assistant command.
//
// One point per service call the assistant resolved and published. The
// write is non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteCommandAudit(entityID string, service string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"assistant_commands",
		map[string]string{
			"entity_id": entityID,
			"service":   service,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteStateChange records an entity state change observed on the bus.
func (c *Client) WriteStateChange(entityID string, domain string, state string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"entity_states",
		map[string]string{
			"entity_id": entityID,
			"domain":    domain,
		},
		map[string]interface{}{
			"state": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods. Tags should
// stay low cardinality.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
