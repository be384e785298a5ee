package dto

import "purity-vision-be/internal/entity"

// ClientMessage is an inbound JSON-mode socket message.
type ClientMessage struct {
	Action string `json:"action"` // "frame", "reset", "set_task", "ping"
	Data   string `json:"data,omitempty"`
	Task   string `json:"task,omitempty"`
}

// FrameMessage carries an annotated frame back to the client.
type FrameMessage struct {
	Type      string        `json:"type"` // "frame"
	Frame     string        `json:"frame"`
	Status    entity.Status `json:"status"`
	ProcessMS float64       `json:"process_ms"`
}

// ControlMessage acknowledges an out-of-band command.
type ControlMessage struct {
	Type    string `json:"type"` // "control"
	Message string `json:"message"`
}

// ErrorMessage reports a recoverable per-message failure; the connection
// stays open.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

type PongMessage struct {
	Type string `json:"type"` // "pong"
}

// StatusMessage is the data-channel style push used by the continuous-track
// transport when session state changes.
type StatusMessage struct {
	Type   string        `json:"type"` // "status"
	Status entity.Status `json:"status"`
}
