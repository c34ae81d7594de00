package duration

import (
	"testing"
	"time"

	"github.com/function61/gokit/assert"
)

func TestHumanize(t *testing.T) {
	tcs := []struct {
		input  string
		output string
	}{
		{"0s", "just now"},
		{"59s", "just now"},
		{"60s", "1 minute"},
		{"119s", "1 minute"},
		{"29m", "29 minutes"},
		{"89m", "1 hour"},
		{"90m", "1 hour"},
		{"23h59m", "23 hours"},
		{"24h", "1 day"},
		{"47h", "1 day"},
		{"167h", "6 days"},
		{"168h", "1 week"},
		{"720h", "4 weeks"},
		{"-1s", "in the future"},
	}

	for _, tc := range tcs {
		tc := tc // pin

		t.Run(tc.input, func(t *testing.T) {
			dur, err := time.ParseDuration(tc.input)
			assert.Ok(t, err)

			assert.EqualString(t, Humanize(dur), tc.output)
		})
	}
}

func TestAgo(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	assert.EqualString(t, Ago(now.Add(-3*day), now), "3 days ago")
	assert.EqualString(t, Ago(now.Add(-10*time.Second), now), "just now")
	assert.EqualString(t, Ago(now.Add(time.Hour), now), "in the future")
}
