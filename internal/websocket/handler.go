package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	ws "github.com/gofiber/websocket/v2"

	"purity-vision-be/internal/dto"
	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/frameio"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/service"
)

// Deps bundles what one stream connection needs. Frames on a single
// connection are processed strictly in arrival order by the read loop.
type Deps struct {
	Session   *entity.Session
	Sessions  service.ISessionService
	Inference service.IInferenceService
	Quality   int
	Logger    logger.ILogger
}

// ServeJSON runs the JSON-mode read loop until the client disconnects.
func ServeJSON(conn *ws.Conn, deps Deps) {
	deps.Logger.Info("StreamSocket", "JSON stream connected", map[string]interface{}{"session_id": deps.Session.ID})
	defer deps.Logger.Info("StreamSocket", "JSON stream disconnected", map[string]interface{}{"session_id": deps.Session.ID})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != ws.TextMessage {
			if !writeError(conn, deps, "expected text messages on JSON endpoint") {
				return
			}
			continue
		}

		var msg dto.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Legacy clients send the bare base64 frame without an envelope.
			msg = dto.ClientMessage{Action: "frame", Data: string(data)}
		}

		var ok bool
		if msg.Action == "frame" {
			ok = handleJSONFrame(conn, deps, msg.Data)
		} else {
			ok = handleControl(conn, deps, msg)
		}
		if !ok {
			return
		}
	}
}

// handleJSONFrame processes one inbound frame and replies with the annotated
// frame plus the post-frame status snapshot.
func handleJSONFrame(conn *ws.Conn, deps Deps, data string) bool {
	frame, err := frameio.DecodeDataURL(data)
	if err != nil {
		return writeError(conn, deps, fmt.Sprintf("invalid frame: %v", err))
	}

	outcome := service.RunFrame(context.Background(), deps.Session, deps.Inference, deps.Logger, frame)
	deps.Sessions.Touch(deps.Session)

	encoded, err := frameio.EncodeDataURL(outcome.Annotated, deps.Quality)
	if err != nil {
		return writeError(conn, deps, fmt.Sprintf("encode frame: %v", err))
	}

	return writeJSON(conn, deps, dto.FrameMessage{
		Type:      "frame",
		Frame:     encoded,
		Status:    outcome.Status,
		ProcessMS: outcome.ProcessMS,
	})
}

// handleControl dispatches the non-frame actions shared by both socket modes.
// Acks and errors always go back as text JSON.
func handleControl(conn *ws.Conn, deps Deps, msg dto.ClientMessage) bool {
	switch msg.Action {
	case "reset":
		deps.Session.Reset()
		deps.Sessions.Touch(deps.Session)
		return writeJSON(conn, deps, dto.ControlMessage{Type: "control", Message: "Session reset"})

	case "set_task":
		stage, err := entity.ParseStage(msg.Task)
		if err != nil {
			return writeError(conn, deps, err.Error())
		}
		deps.Session.SetStage(stage)
		deps.Sessions.Touch(deps.Session)
		return writeJSON(conn, deps, dto.ControlMessage{Type: "control", Message: "Task set to " + msg.Task})

	case "ping":
		return writeJSON(conn, deps, dto.PongMessage{Type: "pong"})

	default:
		return writeError(conn, deps, "unknown action: "+msg.Action)
	}
}

func writeJSON(conn *ws.Conn, deps Deps, v interface{}) bool {
	if err := conn.WriteJSON(v); err != nil {
		deps.Logger.Debug("StreamSocket", "Write failed, closing", map[string]interface{}{
			"session_id": deps.Session.ID,
			"error":      err.Error(),
		})
		return false
	}
	return true
}

func writeError(conn *ws.Conn, deps Deps, message string) bool {
	return writeJSON(conn, deps, dto.ErrorMessage{Type: "error", Message: message})
}
