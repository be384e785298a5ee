// Package websocket implements the message-socket transport: a JSON mode
// where frames travel as base64 data URLs, and a binary mode where responses
// are length-prefixed status JSON followed by raw JPEG bytes.
package websocket

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"purity-vision-be/internal/dto"
)

// controlPrefix marks an inbound binary-mode payload as a JSON control
// message rather than a JPEG frame.
const controlPrefix byte = 0x00

var ErrShortFrame = errors.New("binary frame too short")

// EncodeBinaryResponse packs a frame response as
// [4-byte big-endian status length][status JSON][JPEG bytes].
func EncodeBinaryResponse(status interface{}, jpegData []byte) ([]byte, error) {
	meta, err := json.Marshal(status)
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}
	out := make([]byte, 4, 4+len(meta)+len(jpegData))
	binary.BigEndian.PutUint32(out[:4], uint32(len(meta)))
	out = append(out, meta...)
	out = append(out, jpegData...)
	return out, nil
}

// DecodeBinaryResponse splits a binary response back into its status JSON
// and JPEG payload. Used by tests and diagnostic clients.
func DecodeBinaryResponse(data []byte) (status json.RawMessage, jpegData []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ErrShortFrame
	}
	n := binary.BigEndian.Uint32(data[:4])
	if uint64(4+n) > uint64(len(data)) {
		return nil, nil, ErrShortFrame
	}
	return json.RawMessage(data[4 : 4+n]), data[4+n:], nil
}

// IsControl reports whether an inbound binary payload is a prefixed JSON
// control message.
func IsControl(data []byte) bool {
	return len(data) > 0 && data[0] == controlPrefix
}

// DecodeControl parses the JSON command behind the control prefix.
func DecodeControl(data []byte) (dto.ClientMessage, error) {
	var msg dto.ClientMessage
	if len(data) < 2 || data[0] != controlPrefix {
		return msg, errors.New("not a control message")
	}
	if err := json.Unmarshal(data[1:], &msg); err != nil {
		return msg, fmt.Errorf("decode control message: %w", err)
	}
	return msg, nil
}
