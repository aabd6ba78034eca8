package models

import "time"

// HuntRequest is the body of POST /api/hunt.
type HuntRequest struct {
	FontName string `json:"font_name"`
}

// HuntResponse contains the result of one hunt.
type HuntResponse struct {
	ID             string    `json:"id"`
	FontName       string    `json:"font_name"`
	Success        bool      `json:"success"`
	FilePaths      []string  `json:"file_paths,omitempty"`
	Strategy       string    `json:"strategy,omitempty"`
	SourceURL      string    `json:"source_url,omitempty"`
	Format         string    `json:"format,omitempty"`
	Confidence     string    `json:"confidence,omitempty"`
	Family         string    `json:"family,omitempty"`
	FetchAttempts  int       `json:"fetch_attempts"`
	LastResortInfo string    `json:"last_resort_info,omitempty"`
	Queries        []string  `json:"queries,omitempty"`
	ReportPath     string    `json:"report_path,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
}

// KeywordsResponse shows what a hunt for a name would search for.
type KeywordsResponse struct {
	FontName   string         `json:"font_name"`
	Slug       string         `json:"slug"`
	Keywords   []string       `json:"keywords"`
	Strategies []string       `json:"strategies"`
	Candidates map[string]int `json:"candidates"`
}

// ReportResponse is a fallback report produced without hunting.
type ReportResponse struct {
	FontName string   `json:"font_name"`
	Queries  []string `json:"queries"`
	Text     string   `json:"text"`
}
