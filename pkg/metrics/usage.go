package metrics

// PipelineStats summarizes the work done to answer one plan request.
type PipelineStats struct {
	VenuesDiscovered   int   `json:"venues_discovered"`
	VenuesBelowRating  int   `json:"venues_below_rating,omitempty"`
	VenuesChecked      int   `json:"venues_checked"`
	VenuesAvailable    int   `json:"venues_available"`
	VenuesRejected     int   `json:"venues_rejected"`
	CheckFailures      int   `json:"check_failures,omitempty"`
	DuplicatesSkipped  int   `json:"duplicates_skipped,omitempty"`
	DiscoveryMillis    int64 `json:"discovery_ms"`
	AvailabilityMillis int64 `json:"availability_ms"`
	TotalMillis        int64 `json:"total_ms"`
}

