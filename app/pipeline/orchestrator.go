package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/airightslab/monitor/app/ai"
)

// Orchestrator sequences the source adapters, applies the
// deduplication gate, invokes enrichment, and persists normalized
// records. One run processes items strictly sequentially; partial
// progress is never rolled back.
type Orchestrator struct {
	store    Store
	enricher ai.Enricher
	feed     SourceAdapter
	academic SourceAdapter
	podcast  SourceAdapter
}

func NewOrchestrator(store Store, enricher ai.Enricher, feed, academic, podcast SourceAdapter) *Orchestrator {
	return &Orchestrator{
		store:    store,
		enricher: enricher,
		feed:     feed,
		academic: academic,
		podcast:  podcast,
	}
}

// RunBasic processes the RSS feed source only. A non-nil error means
// the persistence collaborator is unreachable; everything else is
// absorbed into the report.
func (o *Orchestrator) RunBasic(ctx context.Context) (Report, error) {
	if err := o.store.Ping(); err != nil {
		return Report{}, fmt.Errorf("persistence unavailable: %w", err)
	}

	return o.runAdapter(ctx, o.feed), nil
}

// RunComplete processes all three sources in order: feeds, academic
// search, podcasts. One adapter's total failure still lets the
// remaining adapters run; the aggregated report carries the mixed
// outcome.
func (o *Orchestrator) RunComplete(ctx context.Context) (CompleteReport, error) {
	if err := o.store.Ping(); err != nil {
		return CompleteReport{}, fmt.Errorf("persistence unavailable: %w", err)
	}

	start := time.Now()
	results := make([]Report, 0, 3)

	for _, adapter := range []SourceAdapter{o.feed, o.academic, o.podcast} {
		results = append(results, o.runAdapter(ctx, adapter))
	}

	status := StatusSuccess
	for _, result := range results {
		if result.Status != StatusSuccess {
			status = StatusPartial
			break
		}
	}

	slog.Info("Complete pipeline run finished", "status", status, "elapsed", time.Since(start))

	return CompleteReport{
		Status:  status,
		Message: "Complete pipeline finished.",
		Results: results,
	}, nil
}

// runAdapter drains one adapter and pushes every surviving candidate
// through dedup, enrichment, normalization and persistence. A single
// item's failure never halts the rest of the batch.
func (o *Orchestrator) runAdapter(ctx context.Context, adapter SourceAdapter) Report {
	slog.Info("Running source adapter", "adapter", adapter.Name())
	start := time.Now()

	items, stats, err := adapter.Fetch(ctx)
	if err != nil {
		slog.Error("Source adapter failed", "adapter", adapter.Name(), "error", err)
		return Report{
			Status:  StatusError,
			Message: fmt.Sprintf("%s source failed: %v", adapter.Name(), err),
		}
	}

	stored := 0
	skipped := stats.Skipped
	failed := stats.Failed

	for _, item := range items {
		ok, err := o.processItem(ctx, item)
		if err != nil {
			slog.Error("Failed to process item", "adapter", adapter.Name(), "url", item.URL, "error", err)
			failed++
			continue
		}
		if !ok {
			skipped++
			continue
		}
		stored++
	}

	slog.Info("Source adapter finished",
		"adapter", adapter.Name(),
		"stored", stored,
		"skipped", skipped,
		"failed", failed,
		"elapsed", time.Since(start))

	status := StatusSuccess
	if failed > 0 {
		status = StatusPartial
	}

	return Report{
		Status:  status,
		Message: fmt.Sprintf("%s: %d new, %d skipped, %d failed", adapter.Name(), stored, skipped, failed),
	}
}

// processItem runs the dedup gate, enrichment, normalization and
// insert for one candidate. Returns (false, nil) for a dedup skip.
// The gate is checked here even when an adapter pre-checked it, so a
// URL appearing twice within one run is still stored once.
func (o *Orchestrator) processItem(ctx context.Context, item RawItem) (bool, error) {
	exists, err := o.store.Exists(item.URL)
	if err != nil {
		return false, fmt.Errorf("dedup check failed: %w", err)
	}
	if exists {
		slog.Debug("Item already stored, skipping", "url", item.URL)
		return false, nil
	}

	enrichment := Enrichment{
		Summary:   o.enricher.Summarize(ctx, item.Text),
		Category:  o.enricher.Categorize(ctx, item.Text),
		Relevance: o.enricher.ScoreRelevance(ctx, item.Text),
	}

	record := Normalize(item, enrichment, time.Now())

	id, err := o.store.Insert(record)
	if err != nil {
		return false, fmt.Errorf("insert failed: %w", err)
	}

	slog.Info("Stored new content", "id", id, "url", record.URL, "type", record.ContentType, "category", record.Category)

	return true, nil
}
