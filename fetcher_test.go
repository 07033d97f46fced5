package roster_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/roster"
	"github.com/stretchr/testify/assert"
)

func TestResponse_Blocked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *roster.Response
		want bool
	}{
		{"nil response", nil, false},
		{"ok page", &roster.Response{StatusCode: 200, Body: "<html><body>Jane Doe</body></html>"}, false},
		{"forbidden", &roster.Response{StatusCode: 403}, true},
		{"too many requests", &roster.Response{StatusCode: 429}, true},
		{"service unavailable", &roster.Response{StatusCode: 503}, true},
		{"not found is not a block", &roster.Response{StatusCode: 404}, false},
		{"challenge page", &roster.Response{StatusCode: 200, Body: "<title>Just a moment...</title>"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.resp.Blocked())
		})
	}
}

func TestIsChallengePage(t *testing.T) {
	t.Parallel()

	t.Run("ignores markers past the scan limit", func(t *testing.T) {
		t.Parallel()
		body := strings.Repeat("x", 6000) + "Cloudflare"
		assert.False(t, roster.IsChallengePage(body))
	})

	t.Run("detects browser verification marker", func(t *testing.T) {
		t.Parallel()
		assert.True(t, roster.IsChallengePage(`<div id="cf-browser-verification"></div>`))
	})
}
