package automation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sezyil/tiktok-otonom/internal/automation"
)

func TestParseMetric(t *testing.T) {
	tests := map[string]struct {
		text string
		exp  int
	}{
		"Plain number":            {text: "1234", exp: 1234},
		"Thousands separator":     {text: "1,234 Followers", exp: 1234},
		"Abbreviated count":       {text: "12.3K", exp: 123},
		"Surrounding text":        {text: "Likes: 42", exp: 42},
		"Empty string":            {text: "", exp: 0},
		"No digits at all":        {text: "Followers", exp: 0},
		"Whitespace and newlines": {text: "  7 890\n", exp: 7890},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.exp, automation.ParseMetric(tt.text))
		})
	}
}
