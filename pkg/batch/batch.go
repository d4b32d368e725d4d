// Package batch fans a set of product items across a bounded worker pool.
// The runner guarantees one profile per submitted item, in submission order,
// no matter what individual items do: collaborator failures, panics, and
// cancellation all collapse into failed profiles rather than escaping.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/logging"
)

// DefaultConcurrency bounds the worker pool when no limit is configured.
const DefaultConcurrency = 3

// Processor runs one item to a terminal profile. *pipeline.Sequencer
// satisfies it; tests inject fakes.
type Processor interface {
	Run(ctx context.Context, item catalog.Item) *catalog.Profile
}

// Runner processes items concurrently with a fixed worker bound.
type Runner struct {
	processor   Processor
	concurrency int
	itemTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the worker pool size. Values below 1 fall back to
// DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.concurrency = n
		}
	}
}

// WithItemTimeout bounds each item's wall-clock processing time. Zero means
// no per-item deadline.
func WithItemTimeout(d time.Duration) Option {
	return func(r *Runner) { r.itemTimeout = d }
}

// NewRunner builds a batch runner over the given processor.
func NewRunner(p Processor, opts ...Option) *Runner {
	r := &Runner{processor: p, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every item and returns profiles in item order, one per item.
// Context cancellation stops dispatching new items; items not yet started
// report failed profiles carrying the cancellation cause.
func (r *Runner) Run(ctx context.Context, items []catalog.Item) []*catalog.Profile {
	logger := logging.FromContext(ctx)
	logger.Info().
		Int("items", len(items)).
		Int("concurrency", r.concurrency).
		Msg("batch started")

	profiles := make([]*catalog.Profile, len(items))
	sem := make(chan struct{}, r.concurrency)

	var wg sync.WaitGroup
	var done int64
	var mu sync.Mutex

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			profiles[i] = catalog.FailedProfile(item.Name, 0, errors.WrapCollaborator("runner", "dispatch", err))
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, it catalog.Item) {
			defer wg.Done()
			defer func() { <-sem }()

			profiles[idx] = r.runOne(ctx, it)

			mu.Lock()
			done++
			k := done
			mu.Unlock()
			logger.Info().
				Str("product", it.Name).
				Str("status", string(profiles[idx].Status)).
				Msgf("processed %d/%d", k, len(items))
		}(i, item)
	}
	wg.Wait()

	logger.Info().Int("items", len(items)).Msg("batch complete")
	return profiles
}

// runOne executes a single item with the per-item deadline and panic
// containment. A worker panic becomes that item's failed profile.
func (r *Runner) runOne(ctx context.Context, item catalog.Item) (profile *catalog.Profile) {
	if r.itemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.itemTimeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx).Error().
				Str("product", item.Name).
				Interface("panic", rec).
				Msg("worker panicked, item marked failed")
			profile = catalog.FailedProfile(item.Name, 0,
				fmt.Errorf("internal error processing %s: %v", item.Name, rec))
		}
	}()

	return r.processor.Run(ctx, item)
}
