package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/roster"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ roster.RecordService = (*RecordService)(nil)

// RecordService implements roster.RecordService using SQLite. Records are
// keyed by profile URL: writing a record whose profile already exists
// replaces the stored copy unless nothing but the scrape time changed.
type RecordService struct {
	db  *DB
	now func() time.Time
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db, now: time.Now}
}

// WriteRecord stores rec.
func (s *RecordService) WriteRecord(ctx context.Context, rec *roster.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	hash, err := contentHash(rec)
	if err != nil {
		return err
	}

	var profileURL sql.NullString
	if rec.ProfileURL != "" {
		profileURL = sql.NullString{String: rec.ProfileURL, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, profile_url, name, data, content_hash, scraped_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_url) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			content_hash = excluded.content_hash,
			scraped_at = excluded.scraped_at,
			updated_at = excluded.updated_at
		WHERE records.content_hash != excluded.content_hash
	`, uuid.New().String(), profileURL, rec.Name, string(data), hash,
		formatTime(rec.ScrapedAt), formatTime(s.now()))
	return err
}

// contentHash hashes everything but the scrape time.
func contentHash(rec *roster.Record) (string, error) {
	c := *rec
	c.ScrapedAt = time.Time{}
	b, err := json.Marshal(&c)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return hashContent(b), nil
}

// FindRecordByProfileURL retrieves the record stored for a profile URL.
func (s *RecordService) FindRecordByProfileURL(ctx context.Context, profileURL string) (*roster.Record, error) {
	recs, err := s.FindRecords(ctx, roster.RecordFilter{ProfileURL: &profileURL, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, roster.Errorf(roster.ENOTFOUND, "record not found")
	}
	return recs[0], nil
}

// FindRecords retrieves records matching the filter, ordered by name.
func (s *RecordService) FindRecords(ctx context.Context, filter roster.RecordFilter) ([]*roster.Record, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT data FROM records WHERE 1=1")
	if filter.ProfileURL != nil {
		query.WriteString(" AND profile_url = ?")
		args = append(args, *filter.ProfileURL)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	query.WriteString(" ORDER BY name ASC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*roster.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec roster.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// CountRecords returns the number of stored records.
func (s *RecordService) CountRecords(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n)
	return n, err
}
