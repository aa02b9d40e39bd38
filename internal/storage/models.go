package storage

import "time"

// Scheme represents one scraped mutual fund scheme, keyed by its source URL.
type Scheme struct {
	ID         int
	Name       string
	SchemeCode string // empty when the scrape found no code
	FundHouse  string
	SourceURL  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SchemeData represents one scraped data point for a scheme. Value holds the
// scraped literal: scalars are stored raw ("0.21%"), nested data as a JSON
// document.
type SchemeData struct {
	ID        int
	SchemeID  int    // Foreign key to schemes.id
	DataType  string // e.g. "nav", "expense_ratio", "fund_returns"
	Value     string
	ScrapedAt time.Time
}
