package automation

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sezyil/tiktok-otonom/internal/browser"
	"github.com/sezyil/tiktok-otonom/internal/model"
)

// collectStats reads the profile counters from the page. A missing or
// malformed counter yields zero, never an error: stats are best effort.
func (r *Runner) collectStats(ctx context.Context, page browser.Page, username string) *model.AccountStats {
	if err := page.Navigate(ctx, r.selectors.ProfileURLPrefix+username, r.navTimeout); err != nil {
		r.logger.Debugf("Could not reach profile page for stats: %v", err)
		return &model.AccountStats{}
	}
	r.executor.Settle(ctx, r.settle)

	return &model.AccountStats{
		Followers: r.readMetric(ctx, page, r.selectors.FollowerCount),
		Following: r.readMetric(ctx, page, r.selectors.FollowingCount),
		Likes:     r.readMetric(ctx, page, r.selectors.LikeCount),
	}
}

func (r *Runner) readMetric(ctx context.Context, page browser.Page, selector string) int {
	text, err := page.TextContent(ctx, selector, statsTimeout)
	if err != nil {
		return 0
	}
	return ParseMetric(text)
}

const statsTimeout = 5 * time.Second

// ParseMetric parses a profile counter out of element text by stripping every
// non-digit character: "1,234 Followers" -> 1234, "12.3K" -> 123. Anything
// without digits parses to 0.
func ParseMetric(text string) int {
	var b strings.Builder
	for _, c := range text {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}

	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
