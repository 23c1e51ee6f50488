// Package milight connects the radio controller to an MQTT broker.
//
// The bridge subscribes to the configured command topic pattern, decodes
// each JSON payload into a bulb request and queues it on the controller.
// Controller reports flow the other way: the projected group state is
// published retained to the state topic, and requests decoded from remote
// frames are published to the update topic.
//
// Topic patterns use the tokens :device_id, :hex_device_id, :dec_device_id,
// :group_id and :device_type. For example, with the default patterns:
//
//	milight/commands/0x2/rgb_cct/1  {"status":"ON","level":40}
//	milight/states/0x2/rgb_cct/1    {"state":"ON","brightness":102,...}
//
// A HealthReporter publishes the bridge status and controller counters to
// milight/system/bridge/{site_id}/health every HealthInterval.
package milight
