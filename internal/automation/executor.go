package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
)

// Action is a page interaction primitive.
type Action string

const (
	ActionNavigate Action = "navigate"
	ActionWait     Action = "wait"
	ActionType     Action = "type"
	ActionClick    Action = "click"
	ActionUpload   Action = "upload"
	ActionScroll   Action = "scroll"
)

// Step is one declarative page action. Optional steps model best-effort UI
// elements that sometimes don't render: their failure never aborts the flow.
type Step struct {
	Action   Action
	URL      string
	Selector string
	Text     string
	FilePath string
	OffsetY  int
	Timeout  time.Duration
	Optional bool
}

// SettleRange bounds the randomized delay inserted after every step. The
// randomization is an anti-correlation measure and stays tunable per flow.
type SettleRange struct {
	Min time.Duration
	Max time.Duration
}

// Flow is an ordered sequence of steps executed on one leased page.
type Flow struct {
	Name   string
	Steps  []Step
	Settle SettleRange
}

// ExecutorConfig is the configuration for the step executor.
type ExecutorConfig struct {
	Logger log.Logger
}

func (c *ExecutorConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "automation.Executor"})
	return nil
}

// Executor runs flows step by step on a leased page, producing a typed
// outcome per step.
type Executor struct {
	logger log.Logger
}

// NewExecutor creates a new step executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Executor{logger: cfg.Logger}, nil
}

// RunFlow executes the flow's steps strictly in order. A failing required
// step aborts the flow; a failing optional step is skipped. The hard flow
// deadline arrives through ctx and is checked between steps.
func (e *Executor) RunFlow(ctx context.Context, page browser.Page, flow Flow) model.FlowResult {
	completed := 0

	for _, step := range flow.Steps {
		if ctx.Err() != nil {
			return model.FlowResult{Reason: model.ReasonFlowTimeout, CompletedSteps: completed}
		}

		result := e.RunStep(ctx, page, step)
		if result.Outcome != model.StepOK {
			if step.Optional {
				e.logger.Debugf("Optional step %s on %q failed (%s), continuing", step.Action, step.Selector, result.Outcome)
				e.Settle(ctx, flow.Settle)
				continue
			}
			e.logger.Debugf("Flow %s aborted at step %s on %q: %s", flow.Name, step.Action, step.Selector, result.Outcome)
			return model.FlowResult{Reason: reasonForOutcome(result.Outcome), CompletedSteps: completed}
		}

		completed++
		e.Settle(ctx, flow.Settle)
	}

	return model.FlowResult{Success: true, CompletedSteps: completed}
}

// RunStep executes one step and maps its failure onto a typed outcome.
func (e *Executor) RunStep(ctx context.Context, page browser.Page, step Step) model.StepResult {
	start := time.Now()

	var err error
	switch step.Action {
	case ActionNavigate:
		err = page.Navigate(ctx, step.URL, step.Timeout)
	case ActionWait:
		err = page.WaitForSelector(ctx, step.Selector, step.Timeout)
	case ActionType:
		err = page.Type(ctx, step.Selector, step.Text, step.Timeout)
	case ActionClick:
		err = page.Click(ctx, step.Selector, step.Timeout)
	case ActionUpload:
		err = page.UploadFile(ctx, step.Selector, step.FilePath, step.Timeout)
	case ActionScroll:
		err = page.Scroll(ctx, step.OffsetY)
	default:
		err = fmt.Errorf("unknown action %q", step.Action)
	}

	return model.StepResult{
		Outcome: outcomeForError(step.Action, err),
		Elapsed: time.Since(start),
	}
}

// Settle sleeps a random duration within the range, honoring ctx.
func (e *Executor) Settle(ctx context.Context, r SettleRange) {
	if r.Max <= 0 {
		return
	}

	d := r.Min
	if r.Max > r.Min {
		d += time.Duration(rand.Int63n(int64(r.Max - r.Min)))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func outcomeForError(action Action, err error) model.StepOutcome {
	switch {
	case err == nil:
		return model.StepOK
	case action == ActionNavigate:
		return model.StepNavigationError
	case errors.Is(err, browser.ErrElementMissing):
		return model.StepElementMissing
	case errors.Is(err, browser.ErrTimeout):
		return model.StepTimeout
	case errors.Is(err, browser.ErrNavigation):
		return model.StepNavigationError
	default:
		return model.StepTimeout
	}
}

func reasonForOutcome(outcome model.StepOutcome) model.FailureReason {
	switch outcome {
	case model.StepElementMissing:
		return model.ReasonElementMissing
	case model.StepNavigationError:
		return model.ReasonNavigationError
	default:
		return model.ReasonTimeout
	}
}
