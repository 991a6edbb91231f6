package domain

// Continental-US bounding box.
const (
	boundsTop    = 49.3457868
	boundsLeft   = -124.7844079
	boundsRight  = -66.9513812
	boundsBottom = 24.7433195
)

// InBounds reports whether a coordinate pair falls inside the continental
// United States bounding box.
func InBounds(lat, lon float64) bool {
	return boundsBottom <= lat && lat <= boundsTop &&
		boundsLeft <= lon && lon <= boundsRight
}
