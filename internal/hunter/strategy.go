package hunter

import (
	"context"
	"iter"
	"log/slog"

	"fonthunter/internal/candidates"
	"fonthunter/internal/search"
)

// Strategy is one self-contained way of producing font candidates.
// A yielded error abandons the strategy; the hunt moves on to the next one.
type Strategy interface {
	Name() string
	Candidates(ctx context.Context, q candidates.Query) iter.Seq2[candidates.Candidate, error]
}

// SearchSource is the network side of the lookup strategies.
type SearchSource interface {
	ScrapeLinks(ctx context.Context, pageURL string) ([]string, error)
	CodeSearch(ctx context.Context, apiURL string) ([]string, error)
	ArchiveFiles(ctx context.Context, archiveURL, identifier string) ([]string, error)
}

type patternStrategy struct {
	name     string
	generate func(candidates.Query) []candidates.Candidate
}

// PatternStrategy yields the output of a pure generator.
func PatternStrategy(name string, generate func(candidates.Query) []candidates.Candidate) Strategy {
	return &patternStrategy{name: name, generate: generate}
}

func (s *patternStrategy) Name() string { return s.name }

func (s *patternStrategy) Candidates(_ context.Context, q candidates.Query) iter.Seq2[candidates.Candidate, error] {
	return func(yield func(candidates.Candidate, error) bool) {
		for _, c := range s.generate(q) {
			if !yield(c, nil) {
				return
			}
		}
	}
}

type archiveStrategy struct {
	gen    *candidates.Generator
	source SearchSource
	logger *slog.Logger
}

// ArchiveStrategy lists the files of guessed Internet Archive items, then
// falls back to guessing file names inside them. A listing that fails is
// skipped; a rate-limited archive ends the strategy.
func ArchiveStrategy(gen *candidates.Generator, source SearchSource, logger *slog.Logger) Strategy {
	return &archiveStrategy{gen: gen, source: source, logger: logger}
}

func (s *archiveStrategy) Name() string { return candidates.StrategyArchive }

func (s *archiveStrategy) Candidates(ctx context.Context, q candidates.Query) iter.Seq2[candidates.Candidate, error] {
	return func(yield func(candidates.Candidate, error) bool) {
		for _, id := range candidates.ArchiveIdentifiers(q) {
			if ctx.Err() != nil {
				yield(candidates.Candidate{}, ctx.Err())
				return
			}
			files, err := s.source.ArchiveFiles(ctx, s.gen.ArchiveURL, id)
			if err != nil {
				if search.IsRateLimited(err) {
					yield(candidates.Candidate{}, err)
					return
				}
				s.logger.Debug("archive listing failed", "identifier", id, "error", err)
				continue
			}
			s.logger.Debug("archive item listed", "identifier", id, "fonts", len(files))
			for _, f := range files {
				if !yield(candidates.Candidate{URL: f, Strategy: candidates.StrategyArchive}, nil) {
					return
				}
			}
		}
		for _, c := range s.gen.Archive(q) {
			if !yield(c, nil) {
				return
			}
		}
	}
}

type codeHostStrategy struct {
	gen    *candidates.Generator
	source SearchSource
	logger *slog.Logger
}

// CodeHostStrategy queries the code-host search API per keyword and
// extension. A failed query is skipped; rate limiting or a demand for
// credentials ends the strategy, since every later query would get the same.
func CodeHostStrategy(gen *candidates.Generator, source SearchSource, logger *slog.Logger) Strategy {
	return &codeHostStrategy{gen: gen, source: source, logger: logger}
}

func (s *codeHostStrategy) Name() string { return candidates.StrategyCodeHost }

func (s *codeHostStrategy) Candidates(ctx context.Context, q candidates.Query) iter.Seq2[candidates.Candidate, error] {
	return func(yield func(candidates.Candidate, error) bool) {
		for _, query := range s.gen.CodeHostQueries(q) {
			if ctx.Err() != nil {
				yield(candidates.Candidate{}, ctx.Err())
				return
			}
			links, err := s.source.CodeSearch(ctx, query.URL)
			if err != nil {
				if search.IsRateLimited(err) || search.IsUnauthorized(err) {
					yield(candidates.Candidate{}, err)
					return
				}
				s.logger.Debug("code search failed", "url", query.URL, "error", err)
				continue
			}
			for _, link := range links {
				if !yield(candidates.Candidate{URL: link, Strategy: candidates.StrategyCodeHost}, nil) {
					return
				}
			}
		}
	}
}

type searchStrategy struct {
	gen    *candidates.Generator
	source SearchSource
	logger *slog.Logger
}

// SearchStrategy scrapes search-engine and code-host result pages for font
// links. A page that fails to load is skipped; a rate-limited engine ends
// the strategy.
func SearchStrategy(gen *candidates.Generator, source SearchSource, logger *slog.Logger) Strategy {
	return &searchStrategy{gen: gen, source: source, logger: logger}
}

func (s *searchStrategy) Name() string { return candidates.StrategySearch }

func (s *searchStrategy) Candidates(ctx context.Context, q candidates.Query) iter.Seq2[candidates.Candidate, error] {
	return func(yield func(candidates.Candidate, error) bool) {
		for _, page := range s.gen.SearchPages(q) {
			if ctx.Err() != nil {
				yield(candidates.Candidate{}, ctx.Err())
				return
			}
			links, err := s.source.ScrapeLinks(ctx, page.URL)
			if err != nil {
				if search.IsRateLimited(err) {
					yield(candidates.Candidate{}, err)
					return
				}
				s.logger.Debug("search page failed", "url", page.URL, "error", err)
				continue
			}
			for _, link := range links {
				if !yield(candidates.Candidate{URL: link, Strategy: candidates.StrategySearch}, nil) {
					return
				}
			}
		}
	}
}
