package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/roster"
)

// Ensure LoggingRecordWriter implements roster.RecordWriter.
var _ roster.RecordWriter = (*LoggingRecordWriter)(nil)

// LoggingRecordWriter wraps a RecordWriter with logging.
type LoggingRecordWriter struct {
	next   roster.RecordWriter
	logger *slog.Logger
}

// NewLoggingRecordWriter creates a new LoggingRecordWriter.
func NewLoggingRecordWriter(next roster.RecordWriter, logger *slog.Logger) *LoggingRecordWriter {
	return &LoggingRecordWriter{next: next, logger: logger}
}

// WriteRecord delegates to the wrapped writer and logs the record.
func (w *LoggingRecordWriter) WriteRecord(ctx context.Context, rec *roster.Record) error {
	err := w.next.WriteRecord(ctx, rec)
	if err != nil {
		w.logger.Error("write record", "name", rec.Name, "url", rec.ProfileURL, "err", err)
		return err
	}
	w.logger.Debug("write record", "name", rec.Name, "url", rec.ProfileURL)
	return nil
}
