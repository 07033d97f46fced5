package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/roster/cmd/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRunCmd() *main.RunCmd {
	return &main.RunCmd{
		URL:        []string{"https://www.avvo.com/tax-lawyer/ny.html"},
		SearchURL:  main.DefaultSearchURL,
		MaxRecords: 50,
		BatchSize:  5,
		RPS:        2,
	}
}

func TestRunCmd_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(c *main.RunCmd)
		want   error
	}{
		{name: "valid", modify: func(*main.RunCmd) {}},
		{name: "max records at limit", modify: func(c *main.RunCmd) { c.MaxRecords = 10000 }},
		{name: "unlimited records", modify: func(c *main.RunCmd) { c.MaxRecords = 0 }},
		{name: "max records above limit", modify: func(c *main.RunCmd) { c.MaxRecords = 10001 }, want: main.ErrMaxRecordsRange},
		{name: "negative max records", modify: func(c *main.RunCmd) { c.MaxRecords = -1 }, want: main.ErrMaxRecordsRange},
		{name: "negative max pages", modify: func(c *main.RunCmd) { c.MaxPages = -1 }, want: main.ErrInvalidMaxPages},
		{name: "zero batch size", modify: func(c *main.RunCmd) { c.BatchSize = 0 }, want: main.ErrInvalidBatchSize},
		{name: "negative batch pause", modify: func(c *main.RunCmd) { c.BatchPause = -time.Second }, want: main.ErrInvalidBatchPause},
		{name: "negative rps", modify: func(c *main.RunCmd) { c.RPS = -1 }, want: main.ErrInvalidRPS},
		{name: "no entry point", modify: func(c *main.RunCmd) { c.URL = nil }, want: main.ErrNoEntryPoint},
		{name: "blank URLs only", modify: func(c *main.RunCmd) { c.URL = []string{"  "} }, want: main.ErrNoEntryPoint},
		{name: "state without practice area", modify: func(c *main.RunCmd) { c.URL = nil; c.State = "ny" }, want: main.ErrNoEntryPoint},
		{name: "practice area and state", modify: func(c *main.RunCmd) { c.URL = nil; c.PracticeArea = "tax"; c.State = "ny" }},
		{name: "relative URL", modify: func(c *main.RunCmd) { c.URL = []string{"/lawyers"} }, want: main.ErrInvalidStartURL},
		{name: "non-http URL", modify: func(c *main.RunCmd) { c.URL = []string{"ftp://site.test/lawyers"} }, want: main.ErrInvalidStartURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := validRunCmd()
			tt.modify(c)

			err := c.Validate()

			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunCmd_StartURLs(t *testing.T) {
	t.Parallel()

	t.Run("explicit URLs win", func(t *testing.T) {
		t.Parallel()
		c := &main.RunCmd{
			URL:          []string{" https://site.test/a ", "https://site.test/b"},
			PracticeArea: "tax",
			State:        "ny",
			SearchURL:    main.DefaultSearchURL,
		}

		assert.Equal(t, []string{"https://site.test/a", "https://site.test/b"}, c.StartURLs())
	})

	t.Run("search URL from practice area and state", func(t *testing.T) {
		t.Parallel()
		c := &main.RunCmd{PracticeArea: "Bankruptcy-Debt", State: "AL", SearchURL: main.DefaultSearchURL}

		assert.Equal(t, []string{"https://www.avvo.com/bankruptcy-debt-lawyer/al.html"}, c.StartURLs())
	})

	t.Run("city prefixes the state", func(t *testing.T) {
		t.Parallel()
		c := &main.RunCmd{PracticeArea: "tax", State: "ny", City: "New York", SearchURL: main.DefaultSearchURL}

		assert.Equal(t, []string{"https://www.avvo.com/tax-lawyer/new-york-ny.html"}, c.StartURLs())
	})

	t.Run("custom template", func(t *testing.T) {
		t.Parallel()
		c := &main.RunCmd{PracticeArea: "tax", State: "tx", SearchURL: "https://dir.test/find?area={practice_area}&where={location}"}

		assert.Equal(t, []string{"https://dir.test/find?area=tax&where=tx"}, c.StartURLs())
	})
}

func TestRunCmd_SourceDomainOrDefault(t *testing.T) {
	t.Parallel()

	t.Run("explicit", func(t *testing.T) {
		t.Parallel()
		c := &main.RunCmd{SourceDomain: "Avvo.com", URL: []string{"https://site.test/a"}}
		assert.Equal(t, "avvo.com", c.SourceDomainOrDefault())
	})

	t.Run("registrable domain of the first URL", func(t *testing.T) {
		t.Parallel()
		c := &main.RunCmd{URL: []string{"https://www.avvo.com/tax-lawyer/ny.html", "https://other.test/"}}
		assert.Equal(t, "avvo.com", c.SourceDomainOrDefault())
	})

	t.Run("no URL", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, (&main.RunCmd{}).SourceDomainOrDefault())
	})
}

func parseRun(t *testing.T, args ...string) (*main.CLI, error) {
	t.Helper()
	cli := &main.CLI{}
	parser, err := kong.New(cli,
		kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
		kong.Configuration(main.YAMLConfig),
		kong.Vars{"search_url": main.DefaultSearchURL},
	)
	require.NoError(t, err)
	_, err = parser.Parse(args)
	return cli, err
}

func TestYAMLConfig(t *testing.T) {
	t.Parallel()

	t.Run("file fills flags and flags override it", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "run.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
url:
  - https://www.avvo.com/tax-lawyer/ny.html
  - https://www.avvo.com/tax-lawyer/nj.html
max_records: 200
include-reviews: false
rps: 1
batch_pause: 500ms
log_level: debug
`), 0644))

		cli, err := parseRun(t, "--config", path, "run", "--max-records", "7")

		require.NoError(t, err)
		assert.Equal(t, []string{"https://www.avvo.com/tax-lawyer/ny.html", "https://www.avvo.com/tax-lawyer/nj.html"}, cli.Run.URL)
		assert.Equal(t, 7, cli.Run.MaxRecords)
		assert.False(t, cli.Run.IncludeReviews)
		assert.True(t, cli.Run.IncludeContact)
		assert.InDelta(t, 1.0, cli.Run.RPS, 1e-9)
		assert.Equal(t, 500*time.Millisecond, cli.Run.BatchPause)
		assert.Equal(t, "debug", cli.LogLevel)
	})

	t.Run("config values are validated", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "run.yaml")
		require.NoError(t, os.WriteFile(path, []byte("practice_area: tax\nstate: ny\nmax_records: 20000\n"), 0644))

		_, err := parseRun(t, "--config", path, "run")

		require.Error(t, err)
		assert.Contains(t, err.Error(), main.ErrMaxRecordsRange.Error())
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "run.yaml")
		require.NoError(t, os.WriteFile(path, []byte("url: [unclosed\n"), 0644))

		_, err := parseRun(t, "--config", path, "run")

		require.Error(t, err)
	})

	t.Run("no entry point", func(t *testing.T) {
		t.Parallel()

		err := main.NewMain().Run(context.Background(), []string{"run"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), main.ErrNoEntryPoint.Error())
	})
}
