package planning

// Error codes surfaced by CreatePlan.
const (
	CodeInvalidInput      = "invalid_input"
	CodeNoAvailableVenues = "no_available_venues"
	CodePlanTimeout       = "plan_timeout"
	CodeRequestCanceled   = "request_canceled"
	CodePlanningError     = "planning_error"
)
