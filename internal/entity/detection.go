package entity

import "image"

// Box is a pixel-space bounding box (x1,y1)-(x2,y2).
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b Box) Area() int {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

func (b Box) Center() image.Point {
	return image.Pt((b.X1+b.X2)/2, (b.Y1+b.Y2)/2)
}

// Detection is a single labeled box returned by a detector.
type Detection struct {
	Type       string  `json:"type"`  // "gold", "stone", "acid"
	Class      string  `json:"class"` // raw model class label
	Box        Box     `json:"bbox"`
	Confidence float64 `json:"confidence"`
}

// DetectionResult is the per-frame outcome of the inference pipeline. It is
// ephemeral: the pipeline fills it and the session state machine consumes it.
// Stage records which stage the frame was evaluated for, so results computed
// against a stage the session has already left are discarded instead of
// leaking into the wrong stage.
type DetectionResult struct {
	Stage           Stage       `json:"stage"`
	Detections      []Detection `json:"detections"`
	RubbingDetected bool        `json:"rubbing_detected"`
	AcidDetected    bool        `json:"acid_detected"`
	GoldPurity      string      `json:"gold_purity,omitempty"`
}
