package sensor

// GestureResult is the classifier output for one discrete gesture.
type GestureResult struct {
	Name       string  `json:"name"`
	Detected   bool    `json:"detected"`
	Confidence float64 `json:"confidence"`
}

// GestureFrame holds the results for every gesture in the classifier
// database, scoped to the body the gesture reader is bound to.
type GestureFrame struct {
	TrackingID TrackingID      `json:"trackingId"`
	Results    []GestureResult `json:"results"`
}
