package jobs

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"fonthunter/internal/hunter"
)

// DefaultBatchDelay separates consecutive hunts in a batch.
const DefaultBatchDelay = 1 * time.Second

// Hunter runs a single hunt.
type Hunter interface {
	Hunt(ctx context.Context, fontName string) hunter.Outcome
}

// BatchHunter hunts a list of fonts one after another.
type BatchHunter struct {
	hunter     Hunter
	delay      time.Duration
	logger     *slog.Logger
	onProgress func(done, total int, o hunter.Outcome)
	sleep      func(context.Context, time.Duration) error
}

// BatchOption configures a BatchHunter.
type BatchOption func(*BatchHunter)

// WithDelay overrides the pause between fonts.
func WithDelay(d time.Duration) BatchOption {
	return func(b *BatchHunter) { b.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BatchOption {
	return func(b *BatchHunter) { b.logger = l }
}

// WithProgress registers a callback run after every hunt.
func WithProgress(fn func(done, total int, o hunter.Outcome)) BatchOption {
	return func(b *BatchHunter) { b.onProgress = fn }
}

// NewBatchHunter creates a new batch hunter.
func NewBatchHunter(h Hunter, opts ...BatchOption) *BatchHunter {
	b := &BatchHunter{
		hunter: h,
		delay:  DefaultBatchDelay,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run hunts every font in order and returns the outcomes gathered so far.
// Cancelling ctx stops the batch between fonts.
func (b *BatchHunter) Run(ctx context.Context, fonts []string) []hunter.Outcome {
	b.logger.Info("batch hunt started", "fonts", len(fonts), "delay", b.delay)

	outcomes := make([]hunter.Outcome, 0, len(fonts))
	found := 0
	for i, name := range fonts {
		if i > 0 && b.delay > 0 {
			if err := b.sleep(ctx, b.delay); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		o := b.hunter.Hunt(ctx, name)
		outcomes = append(outcomes, o)
		if o.Success {
			found++
		}
		if b.onProgress != nil {
			b.onProgress(i+1, len(fonts), o)
		}
	}

	b.logger.Info("batch hunt finished", "fonts", len(fonts), "hunted", len(outcomes), "found", found)
	return outcomes
}

// Start runs the batch in the background. Used for the startup list.
func (b *BatchHunter) Start(ctx context.Context, fonts []string) {
	if len(fonts) == 0 {
		return
	}
	go b.Run(ctx, fonts)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ReadFontList reads one font name per line. Blank lines and lines starting
// with # are skipped.
func ReadFontList(r io.Reader) ([]string, error) {
	var fonts []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fonts = append(fonts, line)
	}
	return fonts, scanner.Err()
}
