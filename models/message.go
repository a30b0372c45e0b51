package models

import (
	"strings"
)

type Command string

const (
	CommandStart         Command = "start"
	CommandStop          Command = "stop"
	CommandStatus        Command = "status"
	CommandCheckHealth   Command = "check_health"
	CommandGetBackendURL Command = "get_backend_url"
)

func ParseCommand(name string) (Command, bool) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "_") {
	case "start":
		return CommandStart, true
	case "stop":
		return CommandStop, true
	case "status":
		return CommandStatus, true
	case "check_health":
		return CommandCheckHealth, true
	case "get_backend_url":
		return CommandGetBackendURL, true
	}

	return "", false
}

// Mutating reports whether the command changes the backend state.
func (c Command) Mutating() bool {
	return c == CommandStart || c == CommandStop
}
