package dto

// SDPOffer is the peer-connection offer from the client.
type SDPOffer struct {
	SDP  string `json:"sdp" validate:"required"`
	Type string `json:"type" validate:"omitempty,oneof=offer"`
}

// OfferRequest is the signaling endpoint body: an offer plus an optional
// session to attach the track to.
type OfferRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=64"`
	SDP       string `json:"sdp" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=offer"`
}

// SDPAnswer is the server's reply to an offer.
type SDPAnswer struct {
	SessionID string `json:"session_id"`
	SDP       string `json:"sdp"`
	Type      string `json:"type"`
}

// ICECandidate is a trickled connectivity candidate.
type ICECandidate struct {
	SessionID     string  `json:"session_id" validate:"required"`
	Candidate     string  `json:"candidate" validate:"required"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *int    `json:"sdpMLineIndex,omitempty"`
}
