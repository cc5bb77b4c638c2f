// Package pipeline runs one pass from a task source to weekly buckets.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/christopherklint97/asananas/internal/allocation"
	"github.com/christopherklint97/asananas/internal/logging"
	"github.com/christopherklint97/asananas/internal/store"
)

// Source yields the work items of one planning source.
type Source interface {
	Name() string
	WorkItems(ctx context.Context) ([]allocation.WorkItem, error)
}

type Options struct {
	Aggregate allocation.AggregateOptions
	Persons   []string

	// Store, when set, receives every fetched snapshot.
	Store *store.DB
	// Offline reads the latest stored snapshot instead of the source.
	Offline bool
	Logger  *slog.Logger
}

type Result struct {
	Source     string
	Items      []allocation.WorkItem
	Extraction *allocation.Extraction
	Buckets    []allocation.Bucket
}

// Fetch returns the work items of src, either live or from the last snapshot.
func Fetch(ctx context.Context, src Source, opts Options) ([]allocation.WorkItem, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	if opts.Offline {
		if opts.Store == nil {
			return nil, fmt.Errorf("offline mode needs a store")
		}
		snap, err := opts.Store.LatestSnapshot(src.Name())
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, fmt.Errorf("no snapshot stored for %s, run fetch first", src.Name())
		}
		logger.Info("using stored snapshot", "source", src.Name(), "fetched_at", snap.FetchedAt, "items", len(snap.Items))
		return snap.Items, nil
	}

	items, err := src.WorkItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching work items from %s: %w", src.Name(), err)
	}
	logger.Debug("fetched work items", "source", src.Name(), "items", len(items))

	if opts.Store != nil {
		snap, err := opts.Store.SaveSnapshot(src.Name(), items)
		if err != nil {
			return nil, fmt.Errorf("saving snapshot: %w", err)
		}
		logger.Debug("snapshot saved", "id", snap.ID)
	}
	return items, nil
}

func Run(ctx context.Context, src Source, opts Options) (*Result, error) {
	items, err := Fetch(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	ex, err := allocation.Extract(items, opts.Aggregate.WorkDaysPerWeek)
	if err != nil {
		return nil, err
	}

	buckets, err := allocation.Aggregate(allocation.FilterPersons(ex.Facts, opts.Persons), opts.Aggregate)
	if err != nil {
		return nil, err
	}

	return &Result{
		Source:     src.Name(),
		Items:      items,
		Extraction: ex,
		Buckets:    buckets,
	}, nil
}
