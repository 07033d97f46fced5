package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/normalize"
)

// ProfileSelectors configures field extraction from a profile page's markup
// and meta tags. Selector lists are tried in order.
type ProfileSelectors struct {
	Name []string

	Bio     []string
	BioMeta []string

	// Education and Awards collect the text of every matching element.
	Education []string
	Awards    []string

	// EmailData elements carry the address in EmailAttrs or as text.
	EmailData  []string
	EmailAttrs []string

	// PhoneData elements carry the number in PhoneAttrs or as text.
	// PhoneText is the last resort after tel: links.
	PhoneData  []string
	PhoneAttrs []string
	PhoneText  []string

	Location []string

	RatingMeta      []string
	RatingText      []string
	ReviewCountMeta []string
	ReviewCountText []string

	Website      []string
	WebsiteAttrs []string

	ImageMeta  []string
	Image      []string
	ImageAttrs []string

	PracticeAreas []string
	ListItems     string
}

// DefaultProfileSelectors match the profile pages of common directory
// templates.
var DefaultProfileSelectors = ProfileSelectors{
	Name: []string{`[data-testid="lawyer-name"]`, `h1[itemprop="name"]`, `h1`},
	Bio: []string{
		`[data-testid="bio"]`,
		`.lawyer-bio`,
		`.bio-text`,
		`.profile-bio`,
		`[itemprop="description"]`,
	},
	BioMeta: []string{`meta[name="description"]`, `meta[property="og:description"]`},
	Education: []string{
		`[data-testid="education"] li`,
		`.education-item`,
		`.school-item`,
		`[class*="education"] li`,
	},
	Awards: []string{
		`[data-testid="awards"] li`,
		`.award-item`,
		`[class*="award"] li`,
	},
	EmailData: []string{
		`[data-email]`,
		`[data-contact-email]`,
		`[data-testid="email"]`,
		`.email`,
		`.contact-email`,
	},
	EmailAttrs: []string{"data-email", "data-contact-email"},
	PhoneData: []string{
		`[data-phone]`,
		`[data-contact-phone]`,
		`[data-testid="phone"]`,
	},
	PhoneAttrs: []string{"data-phone", "data-contact-phone"},
	PhoneText:  []string{`[data-testid="phone"]`, `.phone`, `.contact-phone`},
	Location: []string{
		`[data-testid="address"]`,
		`[data-testid="location"]`,
		`.profile-address`,
		`.office-address`,
		`address`,
		`.address`,
		`.location`,
	},
	RatingMeta: []string{
		`meta[itemprop="ratingValue"]`,
		`meta[property="ratingValue"]`,
		`meta[name="rating"]`,
	},
	RatingText: []string{
		`[data-testid="rating"]`,
		`.avvo-rating`,
		`.rating-value`,
		`[class*="rating"]`,
	},
	ReviewCountMeta: []string{
		`meta[itemprop="reviewCount"]`,
		`meta[itemprop="ratingCount"]`,
		`meta[name="reviewCount"]`,
	},
	ReviewCountText: []string{
		`[data-testid="review-count"]`,
		`.review-count`,
		`[class*="review-count"]`,
		`[itemprop="reviewCount"]`,
	},
	Website: []string{
		`[data-testid="website"] a`,
		`a[data-website]`,
		`a[data-event-label="Website"]`,
		`a[aria-label*="Website"]`,
		`a[href*="website"]`,
		`[data-website-url]`,
		`[data-url]`,
	},
	WebsiteAttrs: []string{"href", "data-website-url", "data-url"},
	ImageMeta: []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[itemprop="image"]`,
	},
	Image: []string{
		`[data-testid="profile-photo"] img`,
		`.profile-photo img`,
		`.profile-header img`,
		`img[alt*="Attorney"]`,
		`img[alt*="Lawyer"]`,
		`img[itemprop="image"]`,
		`img[class*="profile"]`,
		`img[class*="avatar"]`,
	},
	ImageAttrs:    []string{"src", "data-src", "data-lazy-src"},
	PracticeAreas: []string{`[data-testid="practice-areas"]`, `.practice-areas`, `.specialties`},
	ListItems:     `li, span, a`,
}

// ProfileFields extracts the fields a profile page exposes directly in its
// markup and meta tags. Within each field, markup beats meta tags except
// for rating, review count and image, where meta tags are more precise.
func (d *Document) ProfileFields() *roster.Record {
	sel := d.parser.Profile
	root := d.doc.Selection

	content := func(el *goquery.Selection) string { return normalize.Text(Attr(el, "content")) }

	rec := &roster.Record{
		Name: Cascade(root, sel.Name, Text),
		Bio: normalize.FirstDefined(
			Cascade(root, sel.Bio, Text),
			Cascade(root, sel.BioMeta, content),
		),
		Education: d.allText(sel.Education),
		Awards:    d.allText(sel.Awards),
		Email: normalize.FirstDefined(
			Cascade(root, sel.EmailData, func(el *goquery.Selection) string {
				return normalize.FirstDefined(normalize.Text(Attr(el, sel.EmailAttrs...)), Text(el))
			}),
			Cascade(root, []string{`a[href^="mailto:"]`}, func(el *goquery.Selection) string {
				return normalize.FirstDefined(stripScheme(Attr(el, "href"), "mailto:"), Text(el))
			}),
		),
		Phone: normalize.FirstDefined(
			Cascade(root, sel.PhoneData, func(el *goquery.Selection) string {
				return normalize.FirstDefined(normalize.Text(Attr(el, sel.PhoneAttrs...)), Text(el))
			}),
			Cascade(root, []string{`a[href^="tel:"]`}, func(el *goquery.Selection) string {
				return normalize.FirstDefined(telephone(Attr(el, "href")), Text(el))
			}),
			Cascade(root, sel.PhoneText, Text),
		),
		Location: Cascade(root, sel.Location, Text),
		Rating: normalize.FirstDefined(
			normalize.Number(Cascade(root, sel.RatingMeta, content)),
			normalize.LeadingNumber(Cascade(root, sel.RatingText, Text)),
		),
		ReviewCount: normalize.FirstDefined(
			normalize.Int(Cascade(root, sel.ReviewCountMeta, content)),
			normalize.Int(Cascade(root, sel.ReviewCountText, Text)),
		),
		Website: Cascade(root, sel.Website, func(el *goquery.Selection) string {
			return normalize.ExternalWebsite(Attr(el, sel.WebsiteAttrs...), d.url, d.parser.SourceDomain)
		}),
		Image: normalize.FirstDefined(
			normalize.URL(Cascade(root, sel.ImageMeta, content), d.url),
			Cascade(root, sel.Image, func(el *goquery.Selection) string {
				return normalize.URL(Attr(el, sel.ImageAttrs...), d.url)
			}),
		),
		PracticeAreas: d.itemText(sel.PracticeAreas, sel.ListItems),
	}
	return rec
}

func (d *Document) allText(selectors []string) []string {
	var items []any
	d.doc.Find(strings.Join(selectors, ", ")).Each(func(_ int, el *goquery.Selection) {
		items = append(items, el.Text())
	})
	return normalize.Strings(items)
}

func (d *Document) itemText(containers []string, items string) []string {
	var found []any
	d.doc.Find(strings.Join(containers, ", ")).Find(items).Each(func(_ int, el *goquery.Selection) {
		found = append(found, el.Text())
	})
	return normalize.Strings(found)
}

// stripScheme removes a URL scheme such as mailto: and any query.
func stripScheme(href, scheme string) string {
	if len(href) < len(scheme) || !strings.EqualFold(href[:len(scheme)], scheme) {
		return ""
	}
	v, _, _ := strings.Cut(href[len(scheme):], "?")
	return normalize.Text(v)
}
