// Package handlers serves the HTML pages and health probes.
package handlers

import (
	"context"
	"time"

	"fonthunter/internal/hunter"
)

// Hunter runs a single hunt.
type Hunter interface {
	Hunt(ctx context.Context, fontName string) hunter.Outcome
}

// huntContext detaches the hunt from the request so a dropped connection
// does not abort it half way; deadline <= 0 means no bound.
func huntContext(deadline time.Duration) (context.Context, context.CancelFunc) {
	if deadline <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), deadline)
}
