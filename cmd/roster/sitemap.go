package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/roster"
	rosterhttp "github.com/fwojciec/roster/http"
	rosterslog "github.com/fwojciec/roster/slog"
)

// Run executes the sitemap command.
func (c *SitemapCmd) Run(deps *Dependencies) error {
	filter := roster.ProfilePathFilter()
	if len(c.Filter) > 0 {
		filter = &roster.URLFilter{}
		for _, pattern := range c.Filter {
			re, err := regexp.Compile(pattern)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: invalid filter pattern %q: %v\n", pattern, err)
				return err
			}
			filter.Include = append(filter.Include, re)
		}
	}

	fetcher := rosterslog.NewLoggingFetcher(deps.Fetcher, deps.Logger)
	sitemaps := rosterslog.NewLoggingSitemapService(rosterhttp.NewSitemapService(fetcher), deps.Logger)

	urls, err := sitemaps.DiscoverURLs(deps.Ctx, c.URL, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}
	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}
	return nil
}
