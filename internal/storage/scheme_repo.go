package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// SchemeStore defines the interface for scheme storage operations.
type SchemeStore interface {
	// UpsertScheme inserts a scheme or updates it in place, keyed by source
	// URL. The scheme's ID is filled in on return.
	UpsertScheme(ctx context.Context, scheme *Scheme) error
	// SchemeByURL gets a scheme by its source URL. Returns ErrNotFound if
	// no scheme was scraped from that URL.
	SchemeByURL(ctx context.Context, sourceURL string) (*Scheme, error)
	// ListSchemes returns all schemes ordered by name.
	ListSchemes(ctx context.Context) ([]Scheme, error)
	// UpsertData inserts or replaces one data point, keyed by (scheme, data type).
	UpsertData(ctx context.Context, data *SchemeData) error
	// DataByScheme returns all data points for a scheme in insertion order.
	DataByScheme(ctx context.Context, schemeID int) ([]SchemeData, error)
}

// SchemeRepo provides methods for scheme operations.
// It implements the SchemeStore interface.
type SchemeRepo struct {
	db *sql.DB
}

// NewSchemeRepo creates a new SchemeRepo.
func NewSchemeRepo(db *sql.DB) *SchemeRepo {
	return &SchemeRepo{db: db}
}

// UpsertScheme inserts a scheme or updates it in place, keyed by source URL.
// Re-scraping a page updates the name and code while preserving the row id
// that scheme_data rows point at.
func (r *SchemeRepo) UpsertScheme(ctx context.Context, scheme *Scheme) error {
	fundHouse := scheme.FundHouse
	if fundHouse == "" {
		fundHouse = "UTI"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO schemes (scheme_name, scheme_code, fund_house, source_url)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (source_url) DO UPDATE SET
		 scheme_name = excluded.scheme_name, scheme_code = excluded.scheme_code,
		 updated_at = CURRENT_TIMESTAMP`,
		scheme.Name, nullString(scheme.SchemeCode), fundHouse, scheme.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert scheme: %w", err)
	}

	if err := r.db.QueryRowContext(ctx,
		"SELECT id FROM schemes WHERE source_url = ?", scheme.SourceURL,
	).Scan(&scheme.ID); err != nil {
		return fmt.Errorf("failed to read back scheme id: %w", err)
	}

	return nil
}

// SchemeByURL gets a scheme by its source URL. Returns ErrNotFound if no
// scheme was scraped from that URL.
func (r *SchemeRepo) SchemeByURL(ctx context.Context, sourceURL string) (*Scheme, error) {
	var scheme Scheme
	var code sql.NullString
	var createdAtStr, updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, scheme_name, scheme_code, fund_house, source_url, created_at, updated_at FROM schemes WHERE source_url = ?",
		sourceURL,
	).Scan(&scheme.ID, &scheme.Name, &code, &scheme.FundHouse, &scheme.SourceURL, &createdAtStr, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scheme: %w", err)
	}

	scheme.SchemeCode = code.String
	if scheme.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if scheme.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &scheme, nil
}

// ListSchemes returns all schemes ordered by name, which keeps downstream
// corpus builds deterministic.
func (r *SchemeRepo) ListSchemes(ctx context.Context) ([]Scheme, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, scheme_name, scheme_code, fund_house, source_url, created_at, updated_at FROM schemes ORDER BY scheme_name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var schemes []Scheme
	for rows.Next() {
		var scheme Scheme
		var code sql.NullString
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&scheme.ID, &scheme.Name, &code, &scheme.FundHouse, &scheme.SourceURL, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan scheme: %w", err)
		}

		scheme.SchemeCode = code.String
		if scheme.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		if scheme.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
		}

		schemes = append(schemes, scheme)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return schemes, nil
}

// UpsertData inserts or replaces one data point, keyed by (scheme, data type).
func (r *SchemeRepo) UpsertData(ctx context.Context, data *SchemeData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scheme_data (scheme_id, data_type, value)
		 VALUES (?, ?, ?)
		 ON CONFLICT (scheme_id, data_type) DO UPDATE SET
		 value = excluded.value, scraped_at = CURRENT_TIMESTAMP`,
		data.SchemeID, data.DataType, data.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert scheme data: %w", err)
	}
	return nil
}

// DataByScheme returns all data points for a scheme in insertion order.
// Returns an empty slice if the scheme has no data (not an error).
func (r *SchemeRepo) DataByScheme(ctx context.Context, schemeID int) ([]SchemeData, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, scheme_id, data_type, value, scraped_at FROM scheme_data WHERE scheme_id = ? ORDER BY id",
		schemeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheme data: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var points []SchemeData
	for rows.Next() {
		var point SchemeData
		var scrapedAtStr string
		if err := rows.Scan(&point.ID, &point.SchemeID, &point.DataType, &point.Value, &scrapedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan scheme data: %w", err)
		}

		if point.ScrapedAt, err = parseTimestamp(scrapedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse scraped_at timestamp: %w", err)
		}

		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return points, nil
}

// parseTimestamp handles both DATETIME string formats SQLite emits.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// nullString maps the empty string onto SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
