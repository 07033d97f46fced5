package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/normalize"
)

// CardSelectors configures listing-card extraction. Each field lists CSS
// selectors in priority order, evaluated within a card.
type CardSelectors struct {
	// Cards locate listing cards. The first selector matching at least one
	// element on the page is used for every card.
	Cards []string

	// Name elements usually link to the profile, so their href is taken as
	// the profile URL.
	Name []string
	// ProfileLink is consulted when the name element carries no link.
	ProfileLink []string

	Rating        []string
	ReviewCount   []string
	PracticeAreas []string
	Location      []string
	Phone         []string
	Website       []string
	YearsLicensed []string
	BarAdmissions []string
	Languages     []string
	Image         []string

	// Bio selectors end with a generic paragraph. Only text longer than
	// BioMinLength is accepted.
	Bio          []string
	BioMinLength int

	// ListItems selects the entries inside list-field containers.
	ListItems string
	// ListItemMinLength drops entries shorter than this, such as
	// separators and bullets.
	ListItemMinLength int
}

// DefaultCardSelectors match the card markup of common directory templates.
var DefaultCardSelectors = CardSelectors{
	Cards: []string{
		`div[data-testid="lawyer-card"]`,
		`.lawyer-card`,
		`[class*="lawyer"][class*="card"]`,
		`article[data-lawyer-id]`,
		`.search-result-lawyer`,
		`.profile-card`,
		`[data-lawyer-name]`,
	},
	Name: []string{
		`[data-testid="lawyer-name"]`,
		`h2 a`,
		`h3 a`,
		`.lawyer-name`,
		`.profile-name`,
		`a[href*="/attorney/"]`,
	},
	ProfileLink: []string{
		`a[href*="/attorney/"]`,
		`a[href*="/attorneys/"]`,
		`a[href*="/lawyer/"]`,
	},
	Rating: []string{
		`[data-testid="rating"]`,
		`.rating-value`,
		`.avvo-rating`,
		`[class*="rating"]`,
	},
	ReviewCount: []string{
		`[data-testid="review-count"]`,
		`.review-count`,
		`[class*="review"]`,
	},
	PracticeAreas: []string{
		`[data-testid="practice-areas"]`,
		`.practice-areas`,
		`.specialties`,
		`[class*="practice"]`,
	},
	Location: []string{
		`[data-testid="location"]`,
		`.location`,
		`.address`,
		`[class*="location"]`,
	},
	Phone: []string{
		`[data-testid="phone"]`,
		`.phone`,
		`a[href^="tel:"]`,
		`[class*="phone"]`,
	},
	Website: []string{
		`[data-testid="website"]`,
		`a[href*="website"]`,
		`.website`,
		`a[data-website]`,
	},
	YearsLicensed: []string{
		`[data-testid="years-licensed"]`,
		`.years-licensed`,
		`[class*="years"]`,
	},
	BarAdmissions: []string{
		`[data-testid="bar-admissions"]`,
		`.bar-admissions`,
		`[class*="bar"]`,
	},
	Languages: []string{
		`[data-testid="languages"]`,
		`.languages`,
		`[class*="language"]`,
	},
	Image: []string{`img`},
	Bio: []string{
		`[data-testid="bio"]`,
		`.bio`,
		`.description`,
		`.profile-description`,
		`.profile-summary`,
		`.lawyer-bio`,
		`.bio-text`,
		`[itemprop="description"]`,
		`p`,
	},
	BioMinLength:      50,
	ListItems:         `li, span, a`,
	ListItemMinLength: 2,
}

// Cards extracts one record per listing card. Cards with neither a name
// nor a profile link are dropped.
func (d *Document) Cards() []*roster.Record {
	sel := d.parser.Cards

	var cards *goquery.Selection
	for _, selector := range sel.Cards {
		if has(d.doc.Selection, selector) {
			cards = d.doc.Find(selector)
			break
		}
	}
	if cards == nil {
		return nil
	}

	var out []*roster.Record
	cards.Each(func(_ int, card *goquery.Selection) {
		if rec := d.card(card, sel); rec != nil {
			out = append(out, rec)
		}
	})
	return out
}

func (d *Document) card(card *goquery.Selection, sel CardSelectors) *roster.Record {
	var profileURL string
	name := Cascade(card, sel.Name, func(el *goquery.Selection) string {
		t := Text(el)
		if t != "" {
			profileURL = normalize.URL(Attr(el, "href"), d.url)
		}
		return t
	})
	if profileURL == "" {
		profileURL = Cascade(card, sel.ProfileLink, func(el *goquery.Selection) string {
			return normalize.URL(Attr(el, "href"), d.url)
		})
	}
	if name == "" && profileURL == "" {
		return nil
	}

	rec := &roster.Record{
		Name:          normalize.FirstDefined(name, roster.UnknownName),
		ProfileURL:    profileURL,
		Location:      Cascade(card, sel.Location, Text),
		YearsLicensed: normalize.Int(Cascade(card, sel.YearsLicensed, Text)),
		ReviewCount:   normalize.Int(Cascade(card, sel.ReviewCount, Text)),
		PracticeAreas: ListCascade(card, sel.PracticeAreas, sel.ListItems, sel.ListItemMinLength),
		BarAdmissions: ListCascade(card, sel.BarAdmissions, sel.ListItems, sel.ListItemMinLength),
		Languages:     ListCascade(card, sel.Languages, sel.ListItems, sel.ListItemMinLength),
		ScrapedAt:     d.parser.now(),
	}

	rec.Rating = normalize.LeadingNumber(Cascade(card, sel.Rating, func(el *goquery.Selection) string {
		t := Text(el)
		if normalize.LeadingNumber(t) == nil {
			return ""
		}
		return t
	}))

	rec.Phone = Cascade(card, sel.Phone, func(el *goquery.Selection) string {
		return normalize.FirstDefined(Text(el), telephone(Attr(el, "href")))
	})

	rec.Website = Cascade(card, sel.Website, func(el *goquery.Selection) string {
		href := Attr(el, "href", "data-website", "data-url")
		if href == "" {
			href = Attr(el.Find("a[href]").First(), "href")
		}
		return normalize.ExternalWebsite(href, d.url, d.parser.SourceDomain)
	})

	rec.Bio = Cascade(card, sel.Bio, func(el *goquery.Selection) string {
		if t := Text(el); len(t) > sel.BioMinLength {
			return t
		}
		return ""
	})

	rec.Image = Cascade(card, sel.Image, func(el *goquery.Selection) string {
		return normalize.URL(Attr(el, "src", "data-src"), d.url)
	})

	return rec
}

// telephone strips a tel: scheme and any query from an href.
func telephone(href string) string {
	if !strings.HasPrefix(strings.ToLower(href), "tel:") {
		return ""
	}
	number, _, _ := strings.Cut(href[len("tel:"):], "?")
	return normalize.Text(number)
}
