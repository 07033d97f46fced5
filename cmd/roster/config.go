package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/roster/crawl"
	"github.com/fwojciec/roster/normalize"
	"gopkg.in/yaml.v3"
)

// DefaultSearchURL builds a directory search page from a practice area and
// a location.
const DefaultSearchURL = "https://www.avvo.com/{practice_area}-lawyer/{location}.html"

// Configuration validation errors.
var (
	ErrNoEntryPoint      = errors.New("provide --url, or both --practice-area and --state")
	ErrMaxRecordsRange   = fmt.Errorf("max-records must be between 0 and %d", crawl.MaxRecordsLimit)
	ErrInvalidStartURL   = errors.New("start URL must be an absolute http(s) URL")
	ErrInvalidMaxPages   = errors.New("max-pages must be non-negative")
	ErrInvalidBatchSize  = errors.New("batch-size must be at least 1")
	ErrInvalidBatchPause = errors.New("batch-pause must be non-negative")
	ErrInvalidRPS        = errors.New("rps must be non-negative")
)

// YAMLConfig loads a flat YAML mapping whose keys are flag names, with
// underscores or hyphens. Values fill flags not given on the command line.
//
//	url:
//	  - https://www.avvo.com/tax-lawyer/ny.html
//	max_records: 200
//	include_reviews: false
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	var values map[string]any
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML config: %w", err)
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		v, ok := values[strings.ReplaceAll(flag.Name, "-", "_")]
		if !ok {
			v, ok = values[flag.Name]
		}
		if !ok || v == nil {
			return nil, nil
		}
		return configValue(v), nil
	}), nil
}

// configValue turns YAML scalars into the strings kong's mappers parse, so
// 1 and 1.0 both decode into a float flag.
func configValue(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, item := range list {
			out[i] = fmt.Sprint(item)
		}
		return out
	}
	return fmt.Sprint(v)
}

// Validate checks the run settings once flags and config file are merged.
func (c *RunCmd) Validate() error {
	if c.MaxRecords < 0 || c.MaxRecords > crawl.MaxRecordsLimit {
		return ErrMaxRecordsRange
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.BatchSize < 1 {
		return ErrInvalidBatchSize
	}
	if c.BatchPause < 0 {
		return ErrInvalidBatchPause
	}
	if c.RPS < 0 {
		return ErrInvalidRPS
	}

	urls := c.StartURLs()
	if len(urls) == 0 {
		return ErrNoEntryPoint
	}
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidStartURL, raw)
		}
	}
	return nil
}

// StartURLs returns the explicit start URLs, or the search URL built from
// practice area and location when none were given.
func (c *RunCmd) StartURLs() []string {
	var urls []string
	for _, u := range c.URL {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) > 0 {
		return urls
	}

	area, state := slug(c.PracticeArea), slug(c.State)
	if area == "" || state == "" {
		return nil
	}
	location := state
	if city := slug(c.City); city != "" {
		location = city + "-" + state
	}
	r := strings.NewReplacer("{practice_area}", area, "{location}", location)
	return []string{r.Replace(c.SearchURL)}
}

// SourceDomainOrDefault returns the configured source domain, or the
// registrable domain of the first start URL.
func (c *RunCmd) SourceDomainOrDefault() string {
	if d := strings.TrimSpace(c.SourceDomain); d != "" {
		return strings.ToLower(d)
	}
	urls := c.StartURLs()
	if len(urls) == 0 {
		return ""
	}
	u, err := url.Parse(urls[0])
	if err != nil {
		return ""
	}
	return normalize.RegistrableDomain(strings.ToLower(u.Hostname()))
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
