package gesture

// Discrete gestures trained into the classifier database.
const (
	HungryTop    = "HungryTop"
	HungryBottom = "HungryBottom"
	HungryMiddle = "HungryMiddle"
	// HungryProgress is a continuous gesture and never wins arbitration.
	HungryProgress = "HungryProgress"
)

// DatabasePath is the default location of the trained gesture database
// consumed by the sensor runtime.
const DatabasePath = "Database/Gestures.gbd"
