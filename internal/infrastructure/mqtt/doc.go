// Package mqtt provides MQTT client connectivity for the MiLight hub.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Group state published retained, remote updates published as events
//   - The command subscription, replayed after reconnect
//   - A retained connected/disconnected status that doubles as the last will
//   - Topic patterns with :device_id, :hex_device_id, :dec_device_id,
//     :group_id and :device_type tokens
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	commands, _ := mqtt.ParsePattern(cfg.MQTT.Topics.Command)
//	err = client.Subscribe(commands.Subscription(), 1,
//	    func(topic string, payload []byte) error {
//	        fields, err := commands.Match(topic)
//	        if err != nil {
//	            return err
//	        }
//	        log.Printf("device 0x%04X group %d: %s", fields.DeviceID, fields.GroupID, payload)
//	        return nil
//	    })
//
//	states, _ := mqtt.ParsePattern(cfg.MQTT.Topics.State)
//	key := mqtt.TopicFields{DeviceType: "rgb_cct", DeviceID: 0x1234, GroupID: 1}
//	err = client.PublishState(states.Bind(key), map[string]any{"state": "ON"})
package mqtt
