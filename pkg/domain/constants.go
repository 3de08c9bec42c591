package domain

// Keys the control-flow family injects into processor parameters and item stores.
const (
	// KeyCurrentItem holds the element being processed.
	KeyCurrentItem = "currentItem"
	// KeyCurrentIndex holds the element's position in the input sequence.
	KeyCurrentIndex = "currentIndex"
)

// Function categories used by the catalog.
const (
	CategoryControl = "control"
	CategoryData    = "data"
	CategoryUtility = "utility"
	CategoryMemory  = "memory"
)
