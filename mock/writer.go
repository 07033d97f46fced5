package mock

import (
	"context"

	"github.com/fwojciec/roster"
)

var _ roster.RecordWriter = (*RecordWriter)(nil)

// RecordWriter is a mock implementation of roster.RecordWriter.
type RecordWriter struct {
	WriteRecordFn func(ctx context.Context, rec *roster.Record) error
}

func (w *RecordWriter) WriteRecord(ctx context.Context, rec *roster.Record) error {
	return w.WriteRecordFn(ctx, rec)
}
