package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/roster"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Fetcher roster.Fetcher
	Now     func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config   kong.ConfigFlag `short:"c" help:"Load settings from a YAML file. Flags override file values."`
	LogLevel string          `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Log level (${enum})"`
	Timeout  time.Duration   `default:"20s" help:"Per-request timeout"`

	Run     RunCmd     `cmd:"" help:"Extract records from listing pages"`
	Sitemap SitemapCmd `cmd:"" help:"List the profile pages a site's sitemaps expose"`
	Records RecordsCmd `cmd:"" help:"List records stored in a SQLite database"`
	Summary SummaryCmd `cmd:"" help:"Show the summary of the last stored run"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URL          []string `name:"url" short:"u" sep:"none" help:"Listing page to start from (repeatable)"`
	PracticeArea string   `name:"practice-area" help:"Practice area slug used to build the search URL"`
	State        string   `help:"State code used to build the search URL"`
	City         string   `help:"City used to build the search URL"`
	SearchURL    string   `name:"search-url" default:"${search_url}" help:"Search URL template; {practice_area} and {location} (city-state or state) are filled in"`
	SourceDomain string   `name:"source-domain" help:"Directory domain whose links are not treated as websites (default: the first URL's domain)"`

	MaxRecords     int           `name:"max-records" default:"50" help:"Stop after this many records, 0 for no limit"`
	MaxPages       int           `name:"max-pages" default:"1000" help:"Stop after fetching this many pages, 0 for no limit"`
	IncludeReviews bool          `name:"include-reviews" default:"true" negatable:"" help:"Collect reviews from profile pages"`
	IncludeContact bool          `name:"include-contact" default:"true" negatable:"" help:"Fill contact details from profile pages"`
	API            bool          `name:"api" default:"true" negatable:"" help:"Follow internal API endpoints referenced by listing pages"`
	HTMLFallback   bool          `name:"html-fallback" default:"true" negatable:"" help:"Extract listing cards from markup when a page has no JSON"`
	Sitemaps       bool          `name:"sitemaps" negatable:"" help:"Also process profile pages listed in sitemaps"`
	BatchSize      int           `name:"batch-size" default:"5" help:"Profile pages fetched concurrently per batch"`
	BatchPause     time.Duration `name:"batch-pause" default:"200ms" help:"Pause between profile batches"`
	RPS            float64       `name:"rps" default:"2" help:"Page requests per second per domain, 0 for no limit"`

	DB  string `name:"db" type:"path" help:"SQLite database to store records in"`
	Out string `name:"out" short:"o" type:"path" help:"Directory for records.jsonl and summary.json (default: ./output unless --db is set)"`
}

// SitemapCmd is the "sitemap" subcommand.
type SitemapCmd struct {
	URL    string   `arg:"" help:"Site or section URL"`
	Filter []string `short:"F" name:"filter" help:"Keep only URLs matching this regex (repeatable)"`
}

// RecordsCmd is the "records" subcommand.
type RecordsCmd struct {
	DB     string `name:"db" type:"existingfile" required:"" help:"SQLite database"`
	Name   string `help:"Only records with this exact name"`
	Limit  int    `default:"100" help:"Maximum records to print"`
	Offset int    `help:"Records to skip"`
}

// SummaryCmd is the "summary" subcommand.
type SummaryCmd struct {
	DB string `name:"db" type:"existingfile" required:"" help:"SQLite database"`
}
