package live

import (
	"encoding/json"

	"github.com/vango-dev/vcell/internal/errors"
)

// Frame types.
const (
	FrameValue = "value"
	FrameSet   = "set"
	FrameError = "error"
)

// Frame is one WebSocket message in either direction.
type Frame struct {
	Type    string          `json:"type"`
	Cell    string          `json:"cell,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

func valueFrame(cell string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: FrameValue, Cell: cell, Value: raw})
}

func errorFrame(ce *errors.CellError) []byte {
	msg := ce.Message
	if ce.Detail != "" {
		msg += ": " + ce.Detail
	}
	data, _ := json.Marshal(Frame{Type: FrameError, Code: ce.Code, Message: msg})
	return data
}
