package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/sqlite"
)

// Run executes the records command. Records are printed as JSON lines.
func (c *RecordsCmd) Run(deps *Dependencies) error {
	db := sqlite.NewDB(c.DB)
	if err := db.Open(); err != nil {
		return fmt.Errorf("open database at %q: %w", c.DB, err)
	}
	defer db.Close()

	filter := roster.RecordFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Name != "" {
		filter.Name = &c.Name
	}
	recs, err := sqlite.NewRecordService(db).FindRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the summary command.
func (c *SummaryCmd) Run(deps *Dependencies) error {
	db := sqlite.NewDB(c.DB)
	if err := db.Open(); err != nil {
		return fmt.Errorf("open database at %q: %w", c.DB, err)
	}
	defer db.Close()

	summary, err := sqlite.NewRunService(db).LastSummary(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", roster.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Run finished %s\n\n", summary.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprint(deps.Stdout, FormatSummary(*summary))
	return nil
}
