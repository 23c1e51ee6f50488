// Package influxdb records radio telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Every logical packet
// the controller sends and every packet accepted from a physical remote is
// written as a point in the milight_radio measurement, tagged with
// direction, device type, device id and group.
//
// Usage:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePacketSent("rgb_cct", 0x1234, 1, 10)
//
// Writes are non-blocking and batched (batch_size, flush_interval).
// Batch failures are delivered to the SetOnError callback.
package influxdb
