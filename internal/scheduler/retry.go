package scheduler

import (
	"math/rand"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/model"
)

// FailureClass groups failure reasons by how the policy reacts to them.
type FailureClass string

const (
	// ClassTransient failures (timeouts, navigation errors, missing
	// elements) are retried with backoff.
	ClassTransient FailureClass = "transient"
	// ClassTerminal failures (rejected credentials) will not improve with
	// retries.
	ClassTerminal FailureClass = "terminal"
	// ClassIntervention failures (verification prompts) need a human and
	// also flag the account as risky.
	ClassIntervention FailureClass = "intervention"
	// ClassUnknown covers unclassified login failures.
	ClassUnknown FailureClass = "unknown"
)

// Classify maps a flow failure reason onto its retry class.
func Classify(reason model.FailureReason) FailureClass {
	switch reason {
	case model.ReasonTimeout, model.ReasonNavigationError, model.ReasonElementMissing, model.ReasonFlowTimeout:
		return ClassTransient
	case model.ReasonAuthenticationRejected:
		return ClassTerminal
	case model.ReasonVerificationRequired:
		return ClassIntervention
	default:
		return ClassUnknown
	}
}

// RetryPolicy decides what to do with a failed task and how failures move the
// account's risk score.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, the first run included.
	MaxAttempts int
	// BaseDelay is the backoff for the first retry; each further retry
	// doubles it up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// RiskThreshold is the risk score at which an account gets locked out
	// of scheduling.
	RiskThreshold int

	// SuccessDecay is the (negative) risk delta applied on success.
	SuccessDecay     int
	TransientRisk    int
	UnknownRisk      int
	InterventionRisk int
}

// DefaultRetryPolicy returns the production policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		BaseDelay:        5 * time.Minute,
		MaxDelay:         2 * time.Hour,
		RiskThreshold:    100,
		SuccessDecay:     -5,
		TransientRisk:    5,
		UnknownRisk:      15,
		InterventionRisk: 25,
	}
}

// Decision is the policy's verdict on a finished session.
type Decision struct {
	// Requeue retries the task after NotBefore.
	Requeue   bool
	NotBefore time.Time
	// RiskDelta is applied to the account's risk score.
	RiskDelta int
}

// OnSuccess returns the decision for a completed task.
func (p RetryPolicy) OnSuccess(now time.Time) Decision {
	return Decision{RiskDelta: p.SuccessDecay}
}

// OnFailure returns the decision for a failed task. attempts counts the runs
// already made, the one that just failed included.
func (p RetryPolicy) OnFailure(reason model.FailureReason, attempts int, now time.Time) Decision {
	class := Classify(reason)

	d := Decision{RiskDelta: p.riskDelta(class)}
	if class == ClassTerminal || class == ClassIntervention {
		return d
	}
	if attempts >= p.MaxAttempts {
		return d
	}

	d.Requeue = true
	d.NotBefore = now.Add(p.Backoff(attempts))
	return d
}

func (p RetryPolicy) riskDelta(class FailureClass) int {
	switch class {
	case ClassTransient:
		return p.TransientRisk
	case ClassIntervention:
		return p.InterventionRisk
	default:
		return p.UnknownRisk
	}
}

// Backoff returns the delay before retry number attempt+1: base doubled per
// failed attempt, capped at MaxDelay, with a ±20% jitter so retries spread
// out instead of stampeding.
func (p RetryPolicy) Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}

	d := p.BaseDelay
	for i := 1; i < attempts && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}

	j := d / 5
	jitter := time.Duration(rand.Int63n(int64(2*j)+1)) - j
	return d + jitter
}
