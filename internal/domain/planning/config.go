package planning

import "time"

// Config holds runtime knobs for the planning service.
type Config struct {
	PlansPerRequest int
	PlanTimeout     time.Duration
	// Seed fixes plan selection randomness; zero seeds from the clock.
	Seed int64
}
