package controller

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/milight-hub/internal/bulb"
)

// Report sources.
const (
	SourceCommand = "command"
	SourceRadio   = "radio"
)

// Command is one inbound request for a bulb group.
type Command struct {
	// ID correlates log lines for one command.
	ID string

	Key      bulb.Key
	Request  bulb.Request
	Received time.Time
}

// NewCommand creates a command with a fresh correlation id.
func NewCommand(key bulb.Key, req bulb.Request) Command {
	return Command{
		ID:       uuid.NewString(),
		Key:      key,
		Request:  req,
		Received: time.Now().UTC(),
	}
}

// Report carries a bulb group's state after it changed.
type Report struct {
	Key    bulb.Key
	Source string

	// CommandID is set for reports caused by a Command.
	CommandID string

	// State is the projection of the group's state onto the configured fields.
	// Nil for a radio report whose frame left the state unchanged.
	State map[string]any

	// Update is the request decoded from a remote's frame. Nil for commands.
	Update *bulb.Request
}
