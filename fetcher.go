package roster

import (
	"context"
	"net/http"
	"strings"
)

// Response is a fetched document.
type Response struct {
	// URL is the effective URL after redirects. Relative links in Body
	// resolve against it.
	URL        string
	StatusCode int
	Body       string
}

// Blocked reports whether the response is an anti-bot interception
// rather than real content.
func (r *Response) Blocked() bool {
	if r == nil {
		return false
	}
	return IsBlockedStatus(r.StatusCode) || IsChallengePage(r.Body)
}

// IsBlockedStatus reports whether an HTTP status signals rate limiting or
// bot protection.
func IsBlockedStatus(code int) bool {
	switch code {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return false
}

// challengeScanLimit bounds how much of a body IsChallengePage inspects.
// Challenge interstitials put their markers in the head.
const challengeScanLimit = 5000

var challengeMarkers = []string{
	"Just a moment",
	"cf-browser-verification",
	"Checking your browser",
	"Cloudflare",
}

// IsChallengePage reports whether an HTML body looks like a bot challenge page.
func IsChallengePage(body string) bool {
	if len(body) > challengeScanLimit {
		body = body[:challengeScanLimit]
	}
	for _, marker := range challengeMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// Fetcher retrieves raw documents. Non-2xx statuses are returned as a
// Response, not an error; errors are reserved for transport failures.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}
