// Package search implements the aggregation pipeline: query expansion,
// concurrent fan-out across marketplace sources, normalization,
// deduplication, relevance ranking and currency conversion.
package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dealscope/dealscope/internal/utils"
	"github.com/dealscope/dealscope/pkg/currency"
	"github.com/dealscope/dealscope/pkg/enhance"
	"github.com/dealscope/dealscope/pkg/listing"
	"github.com/dealscope/dealscope/pkg/query"
	"github.com/dealscope/dealscope/pkg/sources"
)

const (
	// maxFanoutTerms caps how many term variants are sent to every source.
	maxFanoutTerms = 5

	// sourceCallTimeout bounds a single term+source invocation so one hung
	// source cannot stall the batch.
	sourceCallTimeout = 25 * time.Second
)

// Options carries optional per-search controls.
type Options struct {
	// Sources is an allow-list of source names; empty means all registered.
	Sources []string
	// MaxPages is how many result pages each source may fetch per term.
	MaxPages int
}

// searchCount tracks searches performed process-wide, for observability only.
var searchCount atomic.Uint64

// Count returns the number of searches performed by this process.
func Count() uint64 {
	return searchCount.Load()
}

// Perform runs the full pipeline for one query and returns ranked listings.
// Zero results is a normal outcome; an error is returned only when no
// usable sources are configured.
func Perform(ctx context.Context, term, location, targetCurrency string, reg *sources.Registry, enh enhance.Enhancer, opts Options) ([]listing.Scored, error) {
	if reg == nil {
		return nil, errors.New("no source registry configured")
	}
	active := reg.Select(opts.Sources)
	if len(active) == 0 {
		return nil, errors.New("no matching sources configured")
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	searchCount.Add(1)

	eq := enhance.Resolve(ctx, enh, term)
	raws := fanOut(ctx, term, location, eq, active, maxPages)

	normalized := make([]listing.Normalized, 0, len(raws))
	for _, raw := range raws {
		if n := listing.Normalize(raw); n != nil {
			normalized = append(normalized, *n)
		}
	}

	deduped := Dedupe(normalized)
	scored := Score(deduped, term, eq)
	return currency.Convert(scored, targetCurrency), nil
}

// fanoutTerms builds the working term list: the original query first, then
// enhanced variants, deduplicated and capped.
func fanoutTerms(term string, enhanced []string) []string {
	terms := utils.DedupeStrings(append([]string{term}, enhanced...))
	if len(terms) > maxFanoutTerms {
		terms = terms[:maxFanoutTerms]
	}
	return terms
}

// fanOut invokes every term x source pair concurrently and concatenates
// whatever the fulfilled calls returned. Failures (errors, timeouts and
// panics inside a source) are contained per call and contribute nothing.
func fanOut(ctx context.Context, term, location string, eq query.Enhanced, active []sources.Source, maxPages int) []listing.Raw {
	terms := fanoutTerms(term, eq.SearchTerms)

	var (
		mu  sync.Mutex
		out []listing.Raw
		wg  sync.WaitGroup
	)

	for _, t := range terms {
		for _, src := range active {
			wg.Add(1)
			go func(t string, src sources.Source) {
				defer wg.Done()

				results := fetchOne(ctx, t, location, src, maxPages)
				if len(results) == 0 {
					return
				}

				mu.Lock()
				out = append(out, results...)
				mu.Unlock()
			}(t, src)
		}
	}

	wg.Wait()
	return out
}

func fetchOne(ctx context.Context, term, location string, src sources.Source, maxPages int) (results []listing.Raw) {
	defer func() {
		if r := recover(); r != nil {
			utils.Log.Warnf("source %s panicked for %q: %v", src.Name(), term, r)
			results = nil
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, sourceCallTimeout)
	defer cancel()

	results, err := src.Fetch(callCtx, term, location, maxPages)
	if err != nil {
		utils.Log.Warnf("source %s failed for %q: %v", src.Name(), term, err)
		return nil
	}

	utils.Log.Debugf("source %s returned %d listings for %q", src.Name(), len(results), term)
	return results
}
