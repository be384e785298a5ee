package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	ws "github.com/gofiber/websocket/v2"

	"purity-vision-be/internal/dto"
	"purity-vision-be/internal/pkg/frameio"
	"purity-vision-be/internal/service"
)

// ServeBinary runs the binary-mode read loop. Inbound binary payloads are
// raw JPEG frames unless prefixed with the control byte; responses travel as
// length-prefixed status JSON followed by the annotated JPEG. Control acks
// and errors stay on the text channel.
func ServeBinary(conn *ws.Conn, deps Deps) {
	deps.Logger.Info("StreamSocket", "Binary stream connected", map[string]interface{}{"session_id": deps.Session.ID})
	defer deps.Logger.Info("StreamSocket", "Binary stream disconnected", map[string]interface{}{"session_id": deps.Session.ID})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var ok bool
		switch {
		case mt == ws.TextMessage:
			var msg dto.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				ok = writeError(conn, deps, fmt.Sprintf("invalid control message: %v", err))
				break
			}
			ok = handleControl(conn, deps, msg)

		case mt == ws.BinaryMessage && IsControl(data):
			msg, err := DecodeControl(data)
			if err != nil {
				ok = writeError(conn, deps, err.Error())
				break
			}
			ok = handleControl(conn, deps, msg)

		case mt == ws.BinaryMessage:
			ok = handleBinaryFrame(conn, deps, data)

		default:
			ok = true
		}
		if !ok {
			return
		}
	}
}

func handleBinaryFrame(conn *ws.Conn, deps Deps, data []byte) bool {
	frame, err := frameio.DecodeJPEG(data)
	if err != nil {
		return writeError(conn, deps, fmt.Sprintf("invalid frame: %v", err))
	}

	outcome := service.RunFrame(context.Background(), deps.Session, deps.Inference, deps.Logger, frame)
	deps.Sessions.Touch(deps.Session)

	jpegData, err := frameio.EncodeJPEG(outcome.Annotated, deps.Quality)
	if err != nil {
		return writeError(conn, deps, fmt.Sprintf("encode frame: %v", err))
	}
	resp, err := EncodeBinaryResponse(outcome.Status, jpegData)
	if err != nil {
		return writeError(conn, deps, fmt.Sprintf("encode response: %v", err))
	}

	if err := conn.WriteMessage(ws.BinaryMessage, resp); err != nil {
		deps.Logger.Debug("StreamSocket", "Write failed, closing", map[string]interface{}{
			"session_id": deps.Session.ID,
			"error":      err.Error(),
		})
		return false
	}
	return true
}
