package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/log"
	"github.com/sezyil/tiktok-otonom/internal/model"
)

// DefaultProfile returns the automation profile used when no profile file is
// configured.
func DefaultProfile() model.AutomationProfile {
	return model.AutomationProfile{
		SettleMin:          1 * time.Second,
		SettleMax:          3 * time.Second,
		WarmUpIterations:   5,
		LikeProbability:    0.5,
		CommentProbability: 0.2,
		CommentPhrases:     []string{"Nice!", "Great video!", "Love this!", "Amazing!", "Keep it up!"},
	}
}

// RunnerConfig is the configuration for the flow runner.
type RunnerConfig struct {
	// Selectors defaults to DefaultSelectors when left zero.
	Selectors Selectors
	// Profile defaults to DefaultProfile when left zero.
	Profile model.AutomationProfile
	// StepTimeout bounds individual element interactions.
	StepTimeout time.Duration
	// NavigationTimeout bounds page navigations.
	NavigationTimeout time.Duration
	// DisableStats skips the profile counter sub-flow after login.
	DisableStats bool
	Logger       log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Selectors == (Selectors{}) {
		c.Selectors = DefaultSelectors()
	}
	if profileIsZero(c.Profile) {
		c.Profile = DefaultProfile()
	}
	if err := c.Profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	if c.Profile.WarmUpIterations == 0 {
		c.Profile.WarmUpIterations = 5
	}
	if len(c.Profile.CommentPhrases) == 0 {
		c.Profile.CommentPhrases = DefaultProfile().CommentPhrases
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = 10 * time.Second
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "automation.Runner"})
	return nil
}

func profileIsZero(p model.AutomationProfile) bool {
	return p.SettleMin == 0 && p.SettleMax == 0 &&
		p.WarmUpIterations == 0 &&
		p.LikeProbability == 0 && p.CommentProbability == 0 &&
		len(p.CommentPhrases) == 0
}

// Runner builds and executes the canonical automation flows (signup, login,
// post, warm-up) out of the step executor's primitives.
type Runner struct {
	executor    *Executor
	selectors   Selectors
	settle      SettleRange
	profile     model.AutomationProfile
	stepTimeout time.Duration
	navTimeout  time.Duration
	stats       bool
	logger      log.Logger
}

// NewRunner creates a new flow runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	executor, err := NewExecutor(ExecutorConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create executor: %w", err)
	}

	return &Runner{
		executor:    executor,
		selectors:   cfg.Selectors,
		settle:      SettleRange{Min: cfg.Profile.SettleMin, Max: cfg.Profile.SettleMax},
		profile:     cfg.Profile,
		stepTimeout: cfg.StepTimeout,
		navTimeout:  cfg.NavigationTimeout,
		stats:       !cfg.DisableStats,
		logger:      cfg.Logger,
	}, nil
}

// Run executes the flow matching the task type on the leased page.
func (r *Runner) Run(ctx context.Context, page browser.Page, account model.Account, task model.Task) model.FlowResult {
	logger := r.logger.WithValues(log.Kv{"account": account.Username, "task": task.ID, "type": task.Type})
	logger.Debugf("Running flow")

	var result model.FlowResult
	switch task.Type {
	case model.TaskTypeSignup:
		result = r.signup(ctx, page, account)
	case model.TaskTypeLogin:
		result = r.login(ctx, page, account)
	case model.TaskTypePost:
		result = r.post(ctx, page, account, task.Payload)
	case model.TaskTypeWarmUp:
		result = r.warmUp(ctx, page, account, task.Payload)
	default:
		result = model.FlowResult{Reason: model.ReasonNavigationError}
		logger.Errorf("Unknown task type %q", task.Type)
	}

	if result.Success {
		logger.Infof("Flow completed (%d steps)", result.CompletedSteps)
	} else {
		logger.Warningf("Flow failed after %d steps: %s", result.CompletedSteps, result.Reason)
	}
	return result
}

// login signs the account in and, on success, scrapes the profile counters.
func (r *Runner) login(ctx context.Context, page browser.Page, account model.Account) model.FlowResult {
	sel := r.selectors
	flow := Flow{
		Name:   "login",
		Settle: r.settle,
		Steps: []Step{
			{Action: ActionNavigate, URL: sel.LoginURL, Timeout: r.navTimeout},
			{Action: ActionClick, Selector: sel.EmailLoginOption, Timeout: r.stepTimeout, Optional: true},
			{Action: ActionType, Selector: sel.UsernameInput, Text: account.Username, Timeout: r.stepTimeout},
			{Action: ActionType, Selector: sel.PasswordInput, Text: account.Password, Timeout: r.stepTimeout},
			{Action: ActionClick, Selector: sel.SubmitButton, Timeout: r.stepTimeout},
		},
	}

	result := r.executor.RunFlow(ctx, page, flow)
	if !result.Success {
		return result
	}

	if err := page.WaitForSelector(ctx, sel.ProfileIcon, r.stepTimeout); err != nil {
		reason := r.classifyLoginFailure(ctx, page)
		return model.FlowResult{Reason: reason, CompletedSteps: result.CompletedSteps}
	}
	result.CompletedSteps++

	if r.stats {
		result.Stats = r.collectStats(ctx, page, account.Username)
	}
	return result
}

// classifyLoginFailure inspects the stuck login page: a verification prompt
// means the platform wants a human, an error banner means the credentials
// were rejected, anything else is an unclassified login failure.
func (r *Runner) classifyLoginFailure(ctx context.Context, page browser.Page) model.FailureReason {
	if r.probe(ctx, page, r.selectors.VerificationCode) {
		return model.ReasonVerificationRequired
	}
	if r.probe(ctx, page, r.selectors.LoginError) {
		return model.ReasonAuthenticationRejected
	}
	return model.ReasonLoginFailed
}

// post uploads a video. It requires a successful login first; a failed login
// sub-flow short-circuits the whole flow.
func (r *Runner) post(ctx context.Context, page browser.Page, account model.Account, payload model.TaskPayload) model.FlowResult {
	loginResult := r.login(ctx, page, account)
	if !loginResult.Success {
		return model.FlowResult{
			Reason:         loginShortCircuitReason(loginResult.Reason),
			CompletedSteps: loginResult.CompletedSteps,
		}
	}

	sel := r.selectors
	steps := []Step{
		{Action: ActionNavigate, URL: sel.UploadURL, Timeout: r.navTimeout},
		{Action: ActionUpload, Selector: sel.FileInput, FilePath: payload.VideoPath, Timeout: r.navTimeout},
	}
	if payload.Caption != "" {
		steps = append(steps, Step{Action: ActionType, Selector: sel.CaptionInput, Text: payload.Caption, Timeout: r.stepTimeout, Optional: true})
	}
	if payload.Hashtags != "" {
		steps = append(steps, Step{Action: ActionType, Selector: sel.HashtagInput, Text: payload.Hashtags, Timeout: r.stepTimeout, Optional: true})
	}
	steps = append(steps, Step{Action: ActionClick, Selector: sel.PostButton, Timeout: r.stepTimeout})

	result := r.executor.RunFlow(ctx, page, Flow{Name: "post", Settle: r.settle, Steps: steps})
	if !result.Success {
		result.CompletedSteps += loginResult.CompletedSteps
		return result
	}

	// Give the platform time to ingest the upload before the page goes away.
	r.executor.Settle(ctx, r.settle)

	result.CompletedSteps += loginResult.CompletedSteps
	return result
}

// warmUp browses the feed like a person would: scrolling, liking some videos
// and occasionally commenting. Sub-action failures are swallowed; the flow
// only fails when navigation itself does.
func (r *Runner) warmUp(ctx context.Context, page browser.Page, account model.Account, payload model.TaskPayload) model.FlowResult {
	loginResult := r.login(ctx, page, account)
	if !loginResult.Success {
		return model.FlowResult{
			Reason:         loginShortCircuitReason(loginResult.Reason),
			CompletedSteps: loginResult.CompletedSteps,
		}
	}

	sel := r.selectors
	if err := page.Navigate(ctx, sel.FeedURL, r.navTimeout); err != nil {
		return model.FlowResult{Reason: model.ReasonNavigationError, CompletedSteps: loginResult.CompletedSteps}
	}
	r.executor.Settle(ctx, r.settle)

	iterations := r.profile.WarmUpIterations
	if payload.WarmUpIterations > 0 {
		iterations = payload.WarmUpIterations
	}

	completed := loginResult.CompletedSteps + 1
	for i := 0; i < iterations; i++ {
		if ctx.Err() != nil {
			return model.FlowResult{Reason: model.ReasonFlowTimeout, CompletedSteps: completed}
		}

		r.executor.RunStep(ctx, page, Step{Action: ActionScroll, OffsetY: 500})
		r.executor.Settle(ctx, r.settle)

		if rand.Float64() < r.profile.LikeProbability {
			r.executor.RunStep(ctx, page, Step{Action: ActionClick, Selector: sel.LikeIcon, Timeout: r.stepTimeout})
			r.executor.Settle(ctx, r.settle)
		}

		if rand.Float64() < r.profile.CommentProbability {
			r.comment(ctx, page)
		}

		completed++
	}

	return model.FlowResult{Success: true, CompletedSteps: completed}
}

// comment opens the comment drawer and submits one phrase picked uniformly at
// random. Every sub-step is best effort.
func (r *Runner) comment(ctx context.Context, page browser.Page) {
	sel := r.selectors
	phrase := r.profile.CommentPhrases[rand.Intn(len(r.profile.CommentPhrases))]

	flow := Flow{
		Name:   "comment",
		Settle: r.settle,
		Steps: []Step{
			{Action: ActionClick, Selector: sel.CommentIcon, Timeout: r.stepTimeout, Optional: true},
			{Action: ActionType, Selector: sel.CommentInput, Text: phrase, Timeout: r.stepTimeout, Optional: true},
			{Action: ActionClick, Selector: sel.CommentPost, Timeout: r.stepTimeout, Optional: true},
		},
	}
	r.executor.RunFlow(ctx, page, flow)
}

// signup registers a fresh account on the platform.
func (r *Runner) signup(ctx context.Context, page browser.Page, account model.Account) model.FlowResult {
	sel := r.selectors
	flow := Flow{
		Name:   "signup",
		Settle: r.settle,
		Steps: []Step{
			{Action: ActionNavigate, URL: sel.SignupURL, Timeout: r.navTimeout},
			{Action: ActionClick, Selector: sel.EmailSignupOption, Timeout: r.stepTimeout, Optional: true},
			{Action: ActionType, Selector: sel.EmailInput, Text: account.Email, Timeout: r.stepTimeout},
			{Action: ActionType, Selector: sel.PasswordInput, Text: account.Password, Timeout: r.stepTimeout},
			{Action: ActionType, Selector: sel.SignupUsername, Text: account.Username, Timeout: r.stepTimeout, Optional: true},
			{Action: ActionClick, Selector: sel.SubmitButton, Timeout: r.stepTimeout},
		},
	}

	result := r.executor.RunFlow(ctx, page, flow)
	if !result.Success {
		return result
	}

	if err := page.WaitForSelector(ctx, sel.ProfileIcon, r.stepTimeout); err != nil {
		if r.probe(ctx, page, sel.VerificationCode) {
			return model.FlowResult{Reason: model.ReasonVerificationRequired, CompletedSteps: result.CompletedSteps}
		}
		return model.FlowResult{Reason: model.ReasonElementMissing, CompletedSteps: result.CompletedSteps}
	}
	result.CompletedSteps++

	return result
}

// probe checks whether an element is present, with a short budget.
func (r *Runner) probe(ctx context.Context, page browser.Page, selector string) bool {
	return page.WaitForSelector(ctx, selector, probeTimeout) == nil
}

const probeTimeout = 2 * time.Second

// loginShortCircuitReason preserves terminal login failures; everything else
// surfaces as login_failed on the outer flow.
func loginShortCircuitReason(reason model.FailureReason) model.FailureReason {
	switch reason {
	case model.ReasonVerificationRequired, model.ReasonAuthenticationRejected, model.ReasonFlowTimeout:
		return reason
	default:
		return model.ReasonLoginFailed
	}
}
