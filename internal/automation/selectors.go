package automation

// Selectors are the page locations the flows interact with. They are
// environment specific and expected to change, so they live in configuration
// rather than in the flow logic.
type Selectors struct {
	LoginURL  string
	SignupURL string
	UploadURL string
	FeedURL   string
	// ProfileURLPrefix is joined with the account username to reach the
	// profile page.
	ProfileURLPrefix string

	EmailLoginOption  string
	EmailSignupOption string
	UsernameInput     string
	EmailInput        string
	PasswordInput     string
	SignupUsername    string
	SubmitButton      string

	ProfileIcon      string
	VerificationCode string
	LoginError       string

	FollowerCount  string
	FollowingCount string
	LikeCount      string

	FileInput    string
	CaptionInput string
	HashtagInput string
	PostButton   string

	LikeIcon     string
	CommentIcon  string
	CommentInput string
	CommentPost  string
}

// DefaultSelectors returns the selector set for the mobile web surface.
func DefaultSelectors() Selectors {
	return Selectors{
		LoginURL:         "https://www.tiktok.com/login",
		SignupURL:        "https://www.tiktok.com/signup",
		UploadURL:        "https://www.tiktok.com/upload",
		FeedURL:          "https://www.tiktok.com/foryou",
		ProfileURLPrefix: "https://www.tiktok.com/@",

		EmailLoginOption:  `[data-e2e="login-email"]`,
		EmailSignupOption: `[data-e2e="sign-up-email"]`,
		UsernameInput:     `input[placeholder*="email" i]`,
		EmailInput:        `input[placeholder*="email" i]`,
		PasswordInput:     `input[type="password"]`,
		SignupUsername:    `input[placeholder*="username" i]`,
		SubmitButton:      `button[type="submit"]`,

		ProfileIcon:      `[data-e2e="profile-icon"]`,
		VerificationCode: `[data-e2e="verification-code"]`,
		LoginError:       `[data-e2e="login-error"]`,

		FollowerCount:  `[data-e2e="follower-count"]`,
		FollowingCount: `[data-e2e="following-count"]`,
		LikeCount:      `[data-e2e="like-count"]`,

		FileInput:    `input[type="file"]`,
		CaptionInput: `[data-e2e="video-caption"]`,
		HashtagInput: `[data-e2e="hashtag-input"]`,
		PostButton:   `[data-e2e="post-button"]`,

		LikeIcon:     `[data-e2e="like-icon"]`,
		CommentIcon:  `[data-e2e="comment-icon"]`,
		CommentInput: `[data-e2e="comment-input"]`,
		CommentPost:  `[data-e2e="post-comment"]`,
	}
}
