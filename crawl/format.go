package crawl

import "fmt"

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatProgress renders a progress event as a single status line with the
// URL shortened to maxURL characters.
func FormatProgress(event ProgressEvent, maxURL int) string {
	switch event.Type {
	case ProgressPage:
		strategy := string(event.Strategy)
		if strategy == "" {
			strategy = "profile"
		}
		return fmt.Sprintf("%-13s %4d  %s", strategy, event.Records, TruncateURL(event.URL, maxURL))
	case ProgressSkipped:
		return fmt.Sprintf("%-13s %4s  %s: %v", "skipped", "-", TruncateURL(event.URL, maxURL), event.Error)
	case ProgressFinished:
		return fmt.Sprintf("finished, %d records", event.Records)
	}
	return ""
}
