package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/roster"
	"github.com/fwojciec/roster/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunService(t *testing.T) {
	t.Parallel()

	t.Run("no runs yet", func(t *testing.T) {
		t.Parallel()

		_, err := sqlite.NewRunService(setupTestDB(t)).LastSummary(context.Background())

		assert.Equal(t, roster.ENOTFOUND, roster.ErrorCode(err))
	})

	t.Run("returns the latest run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		first := roster.Summary{TotalRecords: 3, PagesProcessed: 1, StartedAt: start, FinishedAt: start.Add(time.Minute)}
		second := roster.Summary{
			TotalRecords:        7,
			PagesProcessed:      2,
			EmbeddedExtractions: 7,
			BlockedRequests:     1,
			StartedAt:           start.Add(time.Hour),
			FinishedAt:          start.Add(time.Hour + time.Minute),
		}
		require.NoError(t, svc.SaveSummary(ctx, second))
		require.NoError(t, svc.SaveSummary(ctx, first))

		got, err := svc.LastSummary(ctx)

		require.NoError(t, err)
		assert.Equal(t, second, *got)
	})
}
