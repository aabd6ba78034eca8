package download

import (
	"errors"
	"fmt"
)

// Fetch stages reported by FetchError.
const (
	StageRequest  = "request"
	StageStatus   = "status"
	StageRead     = "read"
	StageValidate = "validate"
	StagePersist  = "persist"
)

var (
	ErrTooLarge      = errors.New("response exceeds size limit")
	ErrInvalidFont   = errors.New("content is not a font")
	ErrUnsafeURL     = errors.New("URL is not safe to fetch")
	ErrEmptyFontName = errors.New("font name is empty")
)

// FetchError describes a failed download of a single candidate.
type FetchError struct {
	URL   string
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("download %s: %s: %v", e.URL, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StageOf returns the FetchError stage of err, or "".
func StageOf(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return ""
}
