package mqtt

import (
	"encoding/json"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Hub connection states published on the client status topic.
const (
	statusConnected           = "connected"
	statusDisconnectedClean   = "disconnected_clean"
	statusDisconnectedUnclean = "disconnected_unclean"
)

// statusTopic describes the retained connection status message.
type statusTopic struct {
	topic    string
	clientID string
}

type statusMessage struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Timestamp string `json:"timestamp"`
}

func (s statusTopic) enabled() bool {
	return s.topic != ""
}

// registerWill makes the broker publish disconnected_unclean if the hub
// vanishes without a clean Close.
func (s statusTopic) registerWill(opts *pahomqtt.ClientOptions) {
	if !s.enabled() {
		return
	}
	opts.SetBinaryWill(s.topic, s.payload(statusDisconnectedUnclean), 1, true)
}

func (s statusTopic) payload(status string) []byte {
	// Only strings; Marshal cannot fail.
	b, _ := json.Marshal(statusMessage{
		Status:    status,
		ClientID:  s.clientID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}
