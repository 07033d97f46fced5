package record

import (
	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/normalize"
)

// Merge copies every defined field of src onto dst. Absent values in src
// never clear a known value in dst. The name is only taken from src when
// dst has none. The profile URL and scrape time of dst are kept.
func Merge(dst, src *roster.Record) {
	if src == nil {
		return
	}
	if (dst.Name == "" || dst.Name == roster.UnknownName) && src.Name != roster.UnknownName {
		dst.Name = normalize.FirstDefined(src.Name, dst.Name)
	}
	dst.Rating = normalize.FirstDefined(src.Rating, dst.Rating)
	dst.ReviewCount = normalize.FirstDefined(src.ReviewCount, dst.ReviewCount)
	dst.PracticeAreas = normalize.FirstDefined(src.PracticeAreas, dst.PracticeAreas)
	dst.Location = normalize.FirstDefined(src.Location, dst.Location)
	dst.Phone = normalize.FirstDefined(src.Phone, dst.Phone)
	dst.Email = normalize.FirstDefined(src.Email, dst.Email)
	dst.Website = normalize.FirstDefined(src.Website, dst.Website)
	dst.YearsLicensed = normalize.FirstDefined(src.YearsLicensed, dst.YearsLicensed)
	dst.BarAdmissions = normalize.FirstDefined(src.BarAdmissions, dst.BarAdmissions)
	dst.Languages = normalize.FirstDefined(src.Languages, dst.Languages)
	dst.Education = normalize.FirstDefined(src.Education, dst.Education)
	dst.Awards = normalize.FirstDefined(src.Awards, dst.Awards)
	dst.Bio = normalize.FirstDefined(src.Bio, dst.Bio)
	dst.Reviews = normalize.FirstDefined(src.Reviews, dst.Reviews)
	dst.Image = normalize.FirstDefined(src.Image, dst.Image)
}
