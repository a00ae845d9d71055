package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sezyil/tiktok-otonom/internal/model"
	"github.com/sezyil/tiktok-otonom/internal/scheduler"
)

func TestClassify(t *testing.T) {
	tests := map[string]struct {
		reason model.FailureReason
		exp    scheduler.FailureClass
	}{
		"Timeout is transient":                  {reason: model.ReasonTimeout, exp: scheduler.ClassTransient},
		"Navigation error is transient":         {reason: model.ReasonNavigationError, exp: scheduler.ClassTransient},
		"Missing element is transient":          {reason: model.ReasonElementMissing, exp: scheduler.ClassTransient},
		"Flow timeout is transient":             {reason: model.ReasonFlowTimeout, exp: scheduler.ClassTransient},
		"Rejected credentials are terminal":     {reason: model.ReasonAuthenticationRejected, exp: scheduler.ClassTerminal},
		"Verification needs intervention":       {reason: model.ReasonVerificationRequired, exp: scheduler.ClassIntervention},
		"Unclassified login failure is unknown": {reason: model.ReasonLoginFailed, exp: scheduler.ClassUnknown},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, scheduler.Classify(tt.reason))
		})
	}
}

func TestPolicyOnFailure(t *testing.T) {
	policy := scheduler.DefaultRetryPolicy()
	now := time.Now()

	tests := map[string]struct {
		reason       model.FailureReason
		attempts     int
		expRequeue   bool
		expRiskDelta int
	}{
		"Transient failure on first attempt is retried": {
			reason:       model.ReasonTimeout,
			attempts:     1,
			expRequeue:   true,
			expRiskDelta: policy.TransientRisk,
		},

		"Transient failure at max attempts is terminal": {
			reason:       model.ReasonTimeout,
			attempts:     policy.MaxAttempts,
			expRequeue:   false,
			expRiskDelta: policy.TransientRisk,
		},

		"Rejected credentials are never retried": {
			reason:       model.ReasonAuthenticationRejected,
			attempts:     1,
			expRequeue:   false,
			expRiskDelta: policy.UnknownRisk,
		},

		"Verification is never retried and is the riskiest": {
			reason:       model.ReasonVerificationRequired,
			attempts:     1,
			expRequeue:   false,
			expRiskDelta: policy.InterventionRisk,
		},

		"Unknown login failure is retried with elevated risk": {
			reason:       model.ReasonLoginFailed,
			attempts:     1,
			expRequeue:   true,
			expRiskDelta: policy.UnknownRisk,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			decision := policy.OnFailure(tt.reason, tt.attempts, now)

			assert.Equal(t, tt.expRequeue, decision.Requeue)
			assert.Equal(t, tt.expRiskDelta, decision.RiskDelta)
			if tt.expRequeue {
				assert.True(t, decision.NotBefore.After(now))
			}
		})
	}
}

func TestPolicyOnSuccess(t *testing.T) {
	policy := scheduler.DefaultRetryPolicy()

	decision := policy.OnSuccess(time.Now())

	assert.False(t, decision.Requeue)
	assert.Equal(t, policy.SuccessDecay, decision.RiskDelta)
	assert.Negative(t, decision.RiskDelta)
}

func TestPolicyBackoff(t *testing.T) {
	policy := scheduler.RetryPolicy{
		BaseDelay: 1 * time.Minute,
		MaxDelay:  10 * time.Minute,
	}

	// Jitter is ±20%, so compare against generous bounds.
	within := func(t *testing.T, d, base time.Duration) {
		t.Helper()
		assert.GreaterOrEqual(t, d, base*8/10)
		assert.LessOrEqual(t, d, base*12/10)
	}

	within(t, policy.Backoff(1), 1*time.Minute)
	within(t, policy.Backoff(2), 2*time.Minute)
	within(t, policy.Backoff(3), 4*time.Minute)

	// Backoff grows per attempt.
	assert.Less(t, policy.Backoff(1), policy.Backoff(3))

	// The cap holds even for huge attempt counts.
	within(t, policy.Backoff(50), 10*time.Minute)
}
