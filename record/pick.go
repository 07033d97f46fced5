package record

import (
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/normalize"
)

// Score rates how likely rec is the primary subject of the page at pageURL.
// A profile URL equal to the page URL is worth 5, each of email, phone,
// location and rating 2, each of website, image, bio and practice areas 1.
func Score(rec *roster.Record, pageURL string) int {
	score := 0
	if rec.ProfileURL != "" && normalize.URL(rec.ProfileURL, pageURL) == normalize.URL(pageURL, pageURL) {
		score += 5
	}
	for _, present := range []bool{rec.Email != "", rec.Phone != "", rec.Location != "", rec.Rating != nil} {
		if present {
			score += 2
		}
	}
	for _, present := range []bool{rec.Website != "", rec.Image != "", rec.Bio != "", len(rec.PracticeAreas) > 0} {
		if present {
			score++
		}
	}
	return score
}

// PickBest returns the highest-scoring candidate, keeping the earliest on
// ties, or nil when there are none.
func PickBest(candidates []*roster.Record, pageURL string) *roster.Record {
	var best *roster.Record
	bestScore := -1
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if s := Score(c, pageURL); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}
