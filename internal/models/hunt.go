package models

import (
	"time"

	"github.com/google/uuid"
)

// Hunt outcome constants
const (
	OutcomeFound     = "found"
	OutcomeExhausted = "exhausted"
)

// HuntRecord is one finished hunt in the history table.
type HuntRecord struct {
	ID            uuid.UUID `json:"id"`
	FontName      string    `json:"font_name"`
	Slug          string    `json:"slug"`
	Success       bool      `json:"success"`
	Strategy      string    `json:"strategy,omitempty"`
	SourceURL     string    `json:"source_url,omitempty"`
	FilePath      string    `json:"file_path,omitempty"`
	Format        string    `json:"format,omitempty"`
	Confidence    string    `json:"confidence,omitempty"`
	FetchAttempts int       `json:"fetch_attempts"`
	ReportPath    string    `json:"report_path,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// Outcome returns OutcomeFound or OutcomeExhausted.
func (r *HuntRecord) Outcome() string {
	if r.Success {
		return OutcomeFound
	}
	return OutcomeExhausted
}

// HuntStat is a per-strategy hunt count by outcome.
type HuntStat struct {
	Strategy   string
	Outcome    string
	Count      int64
	LastSeenAt time.Time
}
