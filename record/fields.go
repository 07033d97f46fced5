package record

import (
	"strings"

	"github.com/fwojciec/roster/normalize"
)

// Fields lists, per canonical field, the raw keys to try in priority order.
// A key may be a dotted path into nested objects ("aggregateRating.ratingValue");
// a final "#" segment yields the length of a list ("reviews.#").
type Fields struct {
	Name          []string
	ProfileURL    []string
	Rating        []string
	ReviewCount   []string
	PracticeAreas []string
	Phone         []string
	Email         []string
	Website       []string
	YearsLicensed []string
	YearAdmitted  []string
	BarAdmissions []string
	Languages     []string
	Education     []string
	Awards        []string
	Bio           []string
	Image         []string
	Reviews       []string

	// Address is the key holding a string or structured postal address.
	Address string
	// AddressParts are joined when the address is an object.
	AddressParts []string
	// LocationParts are joined when there is no address.
	LocationParts []string

	// ContactPoints holds a list of contact objects scanned for an email
	// and a phone independently.
	ContactPoints string
	ContactEmail  []string
	ContactPhone  []string

	// ContactInfo holds a single contact object consulted after the
	// contact points.
	ContactInfo        []string
	ContactInfoPhone   []string
	ContactInfoEmail   []string
	ContactInfoWebsite []string

	// SameAs holds related links. The first one off the source site is a
	// website candidate.
	SameAs string
}

// DefaultFields covers the key spellings seen across directory listings,
// embedded state and schema.org markup.
var DefaultFields = Fields{
	Name:          []string{"name", "fullName", "displayName", "title"},
	ProfileURL:    []string{"profileUrl", "profile_url", "url", "link"},
	Rating:        []string{"rating", "avvoRating", "avvo_rating", "ratingValue", "aggregateRating.ratingValue"},
	ReviewCount:   []string{"reviewCount", "review_count", "reviews.#", "aggregateRating.reviewCount", "aggregateRating.ratingCount"},
	PracticeAreas: []string{"practiceAreas", "practice_areas", "specialties", "practiceArea", "tags", "knowsAbout", "areaServed"},
	Phone:         []string{"phone", "phoneNumber", "telephone"},
	Email:         []string{"email"},
	Website:       []string{"website", "websiteUrl"},
	YearsLicensed: []string{"yearsLicensed", "years_licensed", "yearsExperience"},
	YearAdmitted:  []string{"yearAdmitted", "year_admitted"},
	BarAdmissions: []string{"barAdmissions", "bar_admissions", "licenses"},
	Languages:     []string{"languages", "language", "knowsLanguage"},
	Education:     []string{"education", "alumniOf"},
	Awards:        []string{"awards", "award"},
	Bio:           []string{"bio", "biography", "summary", "about", "description"},
	Image:         []string{"image", "photo", "logo", "profilePhoto", "avatar", "photoUrl", "imageUrl"},
	Reviews:       []string{"reviews", "review"},

	Address:       "address",
	AddressParts:  []string{"addressLocality", "addressRegion", "postalCode"},
	LocationParts: []string{"location", "city", "state", "region", "postalCode", "zip"},

	ContactPoints: "contactPoint",
	ContactEmail:  []string{"email"},
	ContactPhone:  []string{"telephone", "phone"},

	ContactInfo:        []string{"contactInfo", "contact"},
	ContactInfoPhone:   []string{"phone", "telephone"},
	ContactInfoEmail:   []string{"email"},
	ContactInfoWebsite: []string{"website", "url", "site"},

	SameAs: "sameAs",
}

// Lookup resolves a dotted key path in obj. It returns nil when any step is
// missing or not an object.
func Lookup(obj map[string]any, path string) any {
	var cur any = obj
	for part := range strings.SplitSeq(path, ".") {
		if part == "#" {
			if list, ok := cur.([]any); ok {
				return len(list)
			}
			return nil
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// pick returns the first defined value among the given key paths.
func pick(obj map[string]any, keys []string) any {
	vals := make([]any, len(keys))
	for i, k := range keys {
		vals[i] = Lookup(obj, k)
	}
	return normalize.FirstDefined(vals...)
}
