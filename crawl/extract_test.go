package crawl_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/crawl"
	"github.com/fwojciec/roster/mock"
	"github.com/fwojciec/roster/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilePage = "https://site.test/attorney/jane-doe"

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func newNormalizer() *record.Normalizer {
	n := record.NewNormalizer("site.test")
	n.Now = func() time.Time { return fixedNow }
	return n
}

func listingDoc(embedded, structured []any, cards []*roster.Record) *mock.Document {
	return &mock.Document{
		URLFn:            func() string { return "https://site.test/search" },
		EmbeddedStateFn:  func() []any { return embedded },
		StructuredDataFn: func() []any { return structured },
		CardsFn:          func() []*roster.Record { return cards },
	}
}

func TestExtractListing(t *testing.T) {
	t.Parallel()

	embedded := func(t *testing.T) []any {
		return []any{decode(t, `{"props":{"lawyers":[
			{"name":"Jane Doe","profileUrl":"/attorney/jane-doe"},
			{"name":"John Roe","profileUrl":"/attorney/john-roe"}
		]}}`)}
	}
	structured := func(t *testing.T) []any {
		return []any{decode(t, `{"@type":"Person","name":"Jane Doe","url":"/attorney/jane-doe"}`)}
	}
	cards := []*roster.Record{{Name: "Card", ProfileURL: "https://site.test/attorney/card"}}

	t.Run("embedded state wins", func(t *testing.T) {
		t.Parallel()
		stats := roster.NewStats(fixedNow)

		recs, strategy := crawl.ExtractListing(listingDoc(embedded(t), structured(t), cards), newNormalizer(), stats, true)

		assert.Equal(t, roster.StrategyEmbedded, strategy)
		require.Len(t, recs, 2)
		assert.Equal(t, "https://site.test/attorney/jane-doe", recs[0].ProfileURL)
		assert.Equal(t, 2, stats.Snapshot().EmbeddedExtractions)
		assert.Zero(t, stats.Snapshot().StructuredExtractions)
	})

	t.Run("structured data when no embedded candidates", func(t *testing.T) {
		t.Parallel()
		stats := roster.NewStats(fixedNow)
		unrelated := []any{decode(t, `{"config":{"theme":"dark"}}`)}

		recs, strategy := crawl.ExtractListing(listingDoc(unrelated, structured(t), cards), newNormalizer(), stats, true)

		assert.Equal(t, roster.StrategyStructured, strategy)
		require.Len(t, recs, 1)
		assert.Equal(t, "Jane Doe", recs[0].Name)
		assert.Equal(t, 1, stats.Snapshot().StructuredExtractions)
	})

	t.Run("cards as last resort", func(t *testing.T) {
		t.Parallel()
		stats := roster.NewStats(fixedNow)

		recs, strategy := crawl.ExtractListing(listingDoc(nil, nil, cards), newNormalizer(), stats, true)

		assert.Equal(t, roster.StrategyHTML, strategy)
		assert.Equal(t, cards, recs)
		assert.Equal(t, 1, stats.Snapshot().HTMLExtractions)
	})

	t.Run("cards skipped without html fallback", func(t *testing.T) {
		t.Parallel()
		stats := roster.NewStats(fixedNow)

		recs, strategy := crawl.ExtractListing(listingDoc(nil, nil, cards), newNormalizer(), stats, false)

		assert.Equal(t, roster.StrategyNone, strategy)
		assert.Empty(t, recs)
		assert.Zero(t, stats.Snapshot().HTMLExtractions)
	})

	t.Run("nil stats are allowed", func(t *testing.T) {
		t.Parallel()
		recs, _ := crawl.ExtractListing(listingDoc(nil, nil, cards), newNormalizer(), nil, true)
		assert.Len(t, recs, 1)
	})
}

func TestExtractAPI(t *testing.T) {
	t.Parallel()

	stats := roster.NewStats(fixedNow)
	payload := decode(t, `{"data":{"results":[
		{"fullName":"Jane Doe","profile_url":"/attorney/jane-doe","rating":"4.9"},
		{"fullName":"John Roe","link":"/attorney/john-roe"}
	]}}`)

	recs := crawl.ExtractAPI(payload, "https://site.test/api/search", newNormalizer(), stats)

	require.Len(t, recs, 2)
	assert.Equal(t, "Jane Doe", recs[0].Name)
	assert.Equal(t, "https://site.test/attorney/jane-doe", recs[0].ProfileURL)
	require.NotNil(t, recs[0].Rating)
	assert.InDelta(t, 4.9, *recs[0].Rating, 1e-9)
	assert.Equal(t, 2, stats.Snapshot().APIExtractions)
}

func profileDoc(t *testing.T) *mock.Document {
	t.Helper()
	structured := []any{
		decode(t, `{"@type":"Organization","name":"Directory"}`),
		decode(t, `{"@type":"Person","name":"Jane Doe","url":"https://site.test/attorney/jane-doe",
			"description":"Structured bio",
			"review":[{"@type":"Review","reviewBody":"Great lawyer"}]}`),
	}
	embedded := []any{decode(t, `{"props":{"pageProps":{"lawyers":[{
		"name":"Jane Q. Doe","profileUrl":"/attorney/jane-doe",
		"bio":"Embedded bio","phone":"555-0100","practiceAreas":["Tax"]}]}}}`)}
	return &mock.Document{
		URLFn:            func() string { return profilePage },
		StructuredDataFn: func() []any { return structured },
		EmbeddedStateFn:  func() []any { return embedded },
		ProfileFieldsFn: func() *roster.Record {
			return &roster.Record{
				Name:      "J. Doe",
				Bio:       "HTML bio",
				Phone:     "555-9999",
				Email:     "jane@example.com",
				Education: []string{"Yale Law School"},
			}
		},
	}
}

func TestExtractProfile(t *testing.T) {
	t.Parallel()

	t.Run("structured beats embedded beats markup per field", func(t *testing.T) {
		t.Parallel()

		rec := crawl.ExtractProfile(profileDoc(t), profilePage, newNormalizer(), false)

		assert.Equal(t, "Jane Doe", rec.Name)
		assert.Equal(t, "Structured bio", rec.Bio)
		assert.Equal(t, "555-0100", rec.Phone)
		assert.Equal(t, []string{"Tax"}, rec.PracticeAreas)
		assert.Equal(t, "jane@example.com", rec.Email)
		assert.Equal(t, []string{"Yale Law School"}, rec.Education)
		assert.Equal(t, profilePage, rec.ProfileURL)
		assert.Nil(t, rec.Reviews)
	})

	t.Run("reviews only when requested", func(t *testing.T) {
		t.Parallel()

		rec := crawl.ExtractProfile(profileDoc(t), profilePage, newNormalizer(), true)

		require.Len(t, rec.Reviews, 1)
		assert.Equal(t, "Great lawyer", rec.Reviews[0].(map[string]any)["reviewBody"])
	})

	t.Run("markup only", func(t *testing.T) {
		t.Parallel()
		doc := &mock.Document{
			URLFn: func() string { return profilePage },
			ProfileFieldsFn: func() *roster.Record {
				return &roster.Record{Name: "Jane Doe", Location: "New York, NY"}
			},
		}

		rec := crawl.ExtractProfile(doc, profilePage, newNormalizer(), true)

		assert.Equal(t, "Jane Doe", rec.Name)
		assert.Equal(t, "New York, NY", rec.Location)
		assert.Empty(t, rec.Reviews)
	})

	t.Run("unknown names do not shadow real ones", func(t *testing.T) {
		t.Parallel()
		doc := &mock.Document{
			URLFn: func() string { return profilePage },
			StructuredDataFn: func() []any {
				return []any{decode(t, `{"@type":"Person","url":"https://site.test/attorney/jane-doe","telephone":"555-0100"}`)}
			},
			ProfileFieldsFn: func() *roster.Record { return &roster.Record{Name: "Jane Doe"} },
		}

		rec := crawl.ExtractProfile(doc, profilePage, newNormalizer(), false)

		assert.Equal(t, "Jane Doe", rec.Name)
		assert.Equal(t, "555-0100", rec.Phone)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Parallel()
		doc := &mock.Document{URLFn: func() string { return profilePage }}

		rec := crawl.ExtractProfile(doc, profilePage, newNormalizer(), false)

		assert.Empty(t, rec.Name)
		assert.Equal(t, profilePage, rec.ProfileURL)
	})
}
