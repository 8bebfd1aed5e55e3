package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/dashboard/core"
)

const (
	// DefaultBucketSize caps each category's bucket within a tier.
	DefaultBucketSize = 5
	// DefaultSingleBudget is the per-category result length when exactly
	// one category matched.
	DefaultSingleBudget = 5
	// DefaultMultiBudget is the per-category result length otherwise.
	DefaultMultiBudget = 3
)

// Func answers an app-bar query. It is how the HTTP layer receives a
// search implementation.
type Func func(ctx context.Context, query string) []core.Entry

// Ranker ranks queries against an immutable catalog.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	entries      []core.Entry
	bucketSize   int
	singleBudget int
	multiBudget  int
	logger       *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithBucketSize sets how many entries each category keeps per tier.
// Default is DefaultBucketSize.
func WithBucketSize(size int) Option {
	return func(r *Ranker) error {
		if size <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidBucketSize, size)
		}
		r.bucketSize = size
		return nil
	}
}

// WithBudgets sets the per-category result lengths used when exactly one
// category matched (single) and when several did (multi).
func WithBudgets(single, multi int) Option {
	return func(r *Ranker) error {
		if single <= 0 || multi <= 0 {
			return fmt.Errorf("%w: single %d, multi %d", ErrInvalidBudget, single, multi)
		}
		r.singleBudget = single
		r.multiBudget = multi
		return nil
	}
}

// NewRanker creates a Ranker over a copy of entries.
// The catalog must pass core.ValidateCatalog.
func NewRanker(entries []core.Entry, opts ...Option) (*Ranker, error) {
	if err := core.ValidateCatalog(entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	r := &Ranker{
		entries:      slices.Clone(entries),
		bucketSize:   DefaultBucketSize,
		singleBudget: DefaultSingleBudget,
		multiBudget:  DefaultMultiBudget,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Len returns the number of catalog entries.
func (r *Ranker) Len() int {
	return len(r.entries)
}

// Search ranks query against the catalog. It never fails; a query that
// matches nothing yields an empty, non-nil slice.
func (r *Ranker) Search(query string) []core.Entry {
	return r.SearchWithMonitor(query, nil)
}

// SearchWithMonitor is Search with a monitor receiving callbacks at each
// stage of ranking.
func (r *Ranker) SearchWithMonitor(query string, monitor Monitor) []core.Entry {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	needle := strings.ToLower(query)
	exact := make(map[core.Category][]core.Entry, len(core.Categories))
	include := make(map[core.Category][]core.Entry, len(core.Categories))

	// 1. Split matches into tiers, first come first kept
	for _, entry := range r.entries {
		title := strings.ToLower(entry.Title)
		switch {
		case strings.HasPrefix(title, needle):
			if len(exact[entry.Category]) < r.bucketSize {
				exact[entry.Category] = append(exact[entry.Category], entry)
				monitor.ExactHit(entry)
			}
		case strings.Contains(title, needle):
			if len(include[entry.Category]) < r.bucketSize {
				include[entry.Category] = append(include[entry.Category], entry)
				monitor.IncludeHit(entry)
			}
		}
	}

	// 2. Pick the budget from exact hits, falling back to include hits
	matched := populated(exact)
	if matched == 0 {
		matched = populated(include)
	}
	budget := r.multiBudget
	if matched == 1 {
		budget = r.singleBudget
	}
	monitor.Budget(matched, budget)

	// 3. Emit each category's exact then include entries, truncated
	results := make([]core.Entry, 0, budget*matched)
	for _, category := range core.Categories {
		bucket := slices.Concat(exact[category], include[category])
		if len(bucket) > budget {
			bucket = bucket[:budget]
		}
		results = append(results, bucket...)
	}

	r.logger.Debug("ranked query", "query", query, "categories", matched, "budget", budget, "results", len(results))
	monitor.Finish(results)
	return results
}

// Func adapts the Ranker to a Func.
func (r *Ranker) Func() Func {
	return func(_ context.Context, query string) []core.Entry {
		return r.Search(query)
	}
}

func populated(buckets map[core.Category][]core.Entry) int {
	count := 0
	for _, bucket := range buckets {
		if len(bucket) > 0 {
			count++
		}
	}
	return count
}
