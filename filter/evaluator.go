package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jeremeybingham/reso-client/reso"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the record count below which evaluation stays
// sequential, and the minimum chunk size above it
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates a filter against record sets, chunking
// large sets across goroutines. Match order always follows input order.
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the records matching the filter
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, records []reso.Record) ([]reso.Record, error) {
	if len(records) == 0 {
		return []reso.Record{}, nil
	}

	// Small sets aren't worth the goroutine overhead; filters that are
	// not thread-safe must stay sequential regardless.
	if len(records) < e.batchSize || !filter.IsThreadSafe() {
		return evaluateSequential(filter, records), nil
	}

	return e.evaluateConcurrent(ctx, filter, records)
}

// evaluateSequential evaluates a filter against all records in order
func evaluateSequential(filter CompiledFilter, records []reso.Record) []reso.Record {
	matches := make([]reso.Record, 0, len(records)/4)
	for _, record := range records {
		if filter.Evaluate(record) {
			matches = append(matches, record)
		}
	}
	return matches
}

// evaluateConcurrent chunks the record set across workers, then
// reassembles per-chunk matches in input order
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, records []reso.Record) ([]reso.Record, error) {
	chunkSize := max(len(records)/e.workerCount, e.batchSize)
	chunkCount := (len(records) + chunkSize - 1) / chunkSize
	chunkMatches := make([][]reso.Record, chunkCount)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for index := range chunkCount {
		start := index * chunkSize
		end := min(start+chunkSize, len(records))
		chunk := records[start:end]

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			matches := make([]reso.Record, 0, len(chunk)/4)
			for _, record := range chunk {
				if filter.Evaluate(record) {
					matches = append(matches, record)
				}
			}
			chunkMatches[index] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, matches := range chunkMatches {
		total += len(matches)
	}

	all := make([]reso.Record, 0, total)
	for _, matches := range chunkMatches {
		all = append(all, matches...)
	}

	return all, nil
}
