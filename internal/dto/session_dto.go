package dto

import "purity-vision-be/internal/entity"

type CreateSessionRequest struct {
	// Optional caller-supplied id for resumable sessions.
	SessionID string `json:"session_id" validate:"omitempty,max=64"`
}

type CreateSessionResponse struct {
	SessionID string        `json:"session_id"`
	Status    entity.Status `json:"status"`
}

type SetTaskRequest struct {
	Task string `json:"task" validate:"required,oneof=rubbing acid done"`
}

type ProcessFrameRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Frame     string `json:"frame" validate:"required"` // base64 JPEG, optionally a data URL
}

type ServiceStatusResponse struct {
	DetectionAvailable bool   `json:"detection_available"`
	Device             string `json:"device"`
}

type SignalingStatusResponse struct {
	TransportAvailable bool   `json:"transport_available"`
	DetectionAvailable bool   `json:"detection_available"`
	Device             string `json:"device"`
}
