package model

import "time"

// StepOutcome is the typed result of a single page interaction step.
type StepOutcome string

const (
	StepOK              StepOutcome = "ok"
	StepElementMissing  StepOutcome = "element_missing"
	StepTimeout         StepOutcome = "timeout"
	StepNavigationError StepOutcome = "navigation_error"
)

// StepResult is produced per executed step and consumed by the flow to decide
// the next step or abort.
type StepResult struct {
	Outcome StepOutcome
	Elapsed time.Duration
	// Text holds extracted element text for read steps, empty otherwise.
	Text string
}

// FailureReason classifies why a flow did not complete.
type FailureReason string

const (
	ReasonElementMissing         FailureReason = "element_missing"
	ReasonTimeout                FailureReason = "timeout"
	ReasonNavigationError        FailureReason = "navigation_error"
	ReasonLoginFailed            FailureReason = "login_failed"
	ReasonVerificationRequired   FailureReason = "verification_required"
	ReasonAuthenticationRejected FailureReason = "authentication_rejected"
	ReasonFlowTimeout            FailureReason = "flow_timeout"
)

// FlowResult is the outcome of running a full automation flow on a page.
type FlowResult struct {
	Success        bool
	Reason         FailureReason
	CompletedSteps int
	// Stats is set by flows that scrape profile counters (login).
	Stats *AccountStats
}
