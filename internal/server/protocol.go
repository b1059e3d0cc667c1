package server

import (
	"encoding/json"
	"fmt"

	"github.com/claude/formcoach/internal/engine"
	"github.com/claude/formcoach/internal/models"
)

// Client message types on the session stream.
const (
	MsgHello  = "hello"
	MsgFrame  = "frame"
	MsgPause  = "pause"
	MsgResume = "resume"
	MsgCancel = "cancel"
)

// ClientMessage is the envelope for everything the client sends on the
// stream. Type selects which fields are meaningful.
type ClientMessage struct {
	Type string `json:"type"`

	// hello
	ExerciseID  string `json:"exercise_id,omitempty"`
	SensorReady *bool  `json:"sensor_ready,omitempty"`

	// frame
	Landmarks models.PoseFrame `json:"landmarks,omitempty"`
}

// DecodeClientMessage parses one text frame from the client.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("invalid message: %w", err)
	}
	switch msg.Type {
	case MsgHello, MsgFrame, MsgPause, MsgResume, MsgCancel:
		return msg, nil
	default:
		return ClientMessage{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// HelloAck confirms the session and echoes the negotiated exercise.
type HelloAck struct {
	Type               string                    `json:"type"`
	SessionID          string                    `json:"session_id"`
	Exercise           models.ExerciseDefinition `json:"exercise"`
	CalibrationSeconds int                       `json:"calibration_seconds"`
}

// EventMessage wraps one engine event for the client.
type EventMessage struct {
	Type  string       `json:"type"`
	Event engine.Event `json:"event"`
}

// CueMessage carries one voice cue for client-side playback.
type CueMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ErrorMessage reports a stream-level failure. Close signals the server
// will drop the connection.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Close   bool   `json:"close"`
}
