package roster

import (
	"context"
	"net/url"
	"time"
)

// UnknownName is the sentinel name given to records whose source carries no name.
const UnknownName = "Unknown"

// Record is the canonical profile shape every extraction strategy produces.
type Record struct {
	Name          string    `json:"name"`
	Rating        *float64  `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	PracticeAreas []string  `json:"practiceAreas"`
	Location      string    `json:"location"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Website       string    `json:"website"`
	YearsLicensed int       `json:"yearsLicensed"`
	BarAdmissions []string  `json:"barAdmissions"`
	Languages     []string  `json:"languages"`
	Education     []string  `json:"education"`
	Awards        []string  `json:"awards"`
	ProfileURL    string    `json:"profileUrl"`
	Bio           string    `json:"bio"`
	Reviews       []any     `json:"reviews"`
	Image         string    `json:"image"`
	ScrapedAt     time.Time `json:"scrapedAt"`
}

// Validate returns an error if the record violates the canonical invariants.
func (r *Record) Validate() error {
	if r.Name == "" {
		return Errorf(EINVALID, "record name required")
	}
	for _, raw := range []string{r.ProfileURL, r.Website, r.Image} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() {
			return Errorf(EINVALID, "record URL %q is not absolute", raw)
		}
	}
	if r.ReviewCount < 0 {
		return Errorf(EINVALID, "record review count must be non-negative")
	}
	return nil
}

// Clone returns a copy of the record that shares no slices with the original.
func (r *Record) Clone() *Record {
	c := *r
	if r.Rating != nil {
		v := *r.Rating
		c.Rating = &v
	}
	c.PracticeAreas = cloneStrings(r.PracticeAreas)
	c.BarAdmissions = cloneStrings(r.BarAdmissions)
	c.Languages = cloneStrings(r.Languages)
	c.Education = cloneStrings(r.Education)
	c.Awards = cloneStrings(r.Awards)
	if r.Reviews != nil {
		c.Reviews = append([]any(nil), r.Reviews...)
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// RecordWriter accepts canonical records. Records handed to a writer
// must not be mutated afterwards.
type RecordWriter interface {
	WriteRecord(ctx context.Context, rec *Record) error
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	ProfileURL *string
	Name       *string

	Offset int
	Limit  int
}

// RecordService stores and queries records.
type RecordService interface {
	RecordWriter
	FindRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)
}
