package influxdb

import (
	"strconv"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the hub.
const (
	MeasurementRadio = "milight_radio"
)

// Packet directions used as the "direction" tag.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// WritePacketSent records one logical packet transmission.
//
// Parameters:
//   - deviceType: Bulb family (e.g. "rgb_cct")
//   - deviceID: Remote device id the packet was addressed as
//   - groupID: Remote group (0 = all)
//   - repeats: Number of hop-transmissions performed after throttling
func (c *Client) WritePacketSent(deviceType string, deviceID uint16, groupID uint8, repeats int) {
	c.writeRadioPoint(DirectionSent, deviceType, deviceID, groupID, map[string]any{
		"packets": 1,
		"repeats": repeats,
	})
}

// WritePacketReceived records a packet accepted from a physical remote,
// together with the running duplicate counter of the receiving radio.
func (c *Client) WritePacketReceived(deviceType string, deviceID uint16, groupID uint8, duplicates int) {
	c.writeRadioPoint(DirectionReceived, deviceType, deviceID, groupID, map[string]any{
		"packets":    1,
		"duplicates": duplicates,
	})
}

// WritePoint writes a custom point with full control over tags and fields.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, c.now()))
}

func (c *Client) writeRadioPoint(direction, deviceType string, deviceID uint16, groupID uint8, fields map[string]any) {
	c.WritePoint(MeasurementRadio, map[string]string{
		"direction":   direction,
		"device_type": deviceType,
		"device_id":   "0x" + strconv.FormatUint(uint64(deviceID), 16),
		"group_id":    strconv.Itoa(int(groupID)),
	}, fields)
}
