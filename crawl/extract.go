package crawl

import (
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/normalize"
	"github.com/fwojciec/roster/record"
)

// ExtractListing runs the listing cascade over doc: embedded application
// state, then structured data, then markup cards when htmlFallback is set.
// The first strategy that yields records wins and is counted into stats.
func ExtractListing(doc roster.Document, n *record.Normalizer, stats *roster.Stats, htmlFallback bool) ([]*roster.Record, roster.Strategy) {
	base := doc.URL()

	var embedded []*roster.Record
	for _, payload := range doc.EmbeddedState() {
		embedded = append(embedded, n.FromPayload(payload, base)...)
	}
	if len(embedded) > 0 {
		stats.AddExtracted(roster.StrategyEmbedded, len(embedded))
		return embedded, roster.StrategyEmbedded
	}

	if structured := n.FromStructuredData(doc.StructuredData(), base); len(structured) > 0 {
		stats.AddExtracted(roster.StrategyStructured, len(structured))
		return structured, roster.StrategyStructured
	}

	if htmlFallback {
		if cards := doc.Cards(); len(cards) > 0 {
			stats.AddExtracted(roster.StrategyHTML, len(cards))
			return cards, roster.StrategyHTML
		}
	}
	return nil, roster.StrategyNone
}

// ExtractAPI normalizes every candidate in a decoded API payload.
func ExtractAPI(v any, baseURL string, n *record.Normalizer, stats *roster.Stats) []*roster.Record {
	recs := n.FromPayload(v, baseURL)
	stats.AddExtracted(roster.StrategyAPI, len(recs))
	return recs
}

// ExtractProfile builds the profile record of the page at pageURL. The best
// structured-data candidate beats the best embedded candidate, which beats
// the page markup, field by field. Reviews are only collected when
// includeReviews is set.
func ExtractProfile(doc roster.Document, pageURL string, n *record.Normalizer, includeReviews bool) *roster.Record {
	base := doc.URL()
	structured := doc.StructuredData()

	var embeddedCandidates []*roster.Record
	for _, payload := range doc.EmbeddedState() {
		embeddedCandidates = append(embeddedCandidates, n.FromPayload(payload, base)...)
	}

	// Lowest priority first: Merge lets later sources win.
	sources := []*roster.Record{
		doc.ProfileFields(),
		record.PickBest(embeddedCandidates, pageURL),
		record.PickBest(n.FromStructuredData(structured, base), pageURL),
	}

	out := &roster.Record{ProfileURL: pageURL}
	names := make([]string, 0, len(sources))
	for i := len(sources) - 1; i >= 0; i-- {
		if src := sources[i]; src != nil && src.Name != roster.UnknownName {
			names = append(names, src.Name)
		}
	}
	for _, src := range sources {
		record.Merge(out, src)
	}
	out.Name = normalize.FirstDefined(names...)
	out.Reviews = nil
	if includeReviews {
		out.Reviews = record.Reviews(structured)
	}
	return out
}
