package milight

import (
	"time"

	"github.com/nerrad567/milight-hub/internal/controller"
)

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is operating with issues.
	HealthDegraded HealthStatus = "degraded"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is published retained to the bridge health topic.
type HealthMessage struct {
	// Bridge is the bridge identifier (the site id).
	Bridge string `json:"bridge"`

	// Timestamp is when the health status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	Status  HealthStatus `json:"status"`
	Version string       `json:"version"`

	UptimeSeconds int64 `json:"uptime_seconds"`

	// Radio describes the transceiver.
	Radio *RadioStatus `json:"radio,omitempty"`

	Statistics *BridgeStatistics `json:"statistics,omitempty"`

	// Reason explains a degraded or starting status.
	Reason string `json:"reason,omitempty"`
}

// RadioStatus describes the radio side of the bridge.
type RadioStatus struct {
	// CurrentType is the bulb family the radio is configured for.
	CurrentType string `json:"current_type,omitempty"`

	// ResendCount is the current adaptive repeat count.
	ResendCount int `json:"resend_count"`
}

// BridgeStatistics contains controller counters.
type BridgeStatistics struct {
	Commands       uint64 `json:"commands"`
	FramesSent     uint64 `json:"frames_sent"`
	FramesReceived uint64 `json:"frames_received"`
	Duplicates     uint64 `json:"duplicates"`
	Groups         uint64 `json:"groups"`
}

// NewHealthMessage creates a health status message from controller stats.
func NewHealthMessage(bridgeID, version string, status HealthStatus, stats controller.Stats, currentType string, startTime time.Time) HealthMessage {
	return HealthMessage{
		Bridge:        bridgeID,
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Version:       version,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Radio: &RadioStatus{
			CurrentType: currentType,
			ResendCount: stats.ResendCount,
		},
		Statistics: &BridgeStatistics{
			Commands:       stats.Commands,
			FramesSent:     stats.FramesSent,
			FramesReceived: stats.FramesReceived,
			Duplicates:     stats.Duplicates,
			Groups:         stats.Groups,
		},
	}
}
