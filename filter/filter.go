// Package filter provides client-side filtering of RESO records with
// expr-lang expressions, for refinement beyond what a server-side OData
// $filter can express.
package filter

import (
	"context"

	"github.com/jeremeybingham/reso-client/reso"
)

// Filter defines the basic interface for record filters
type Filter interface {
	// Evaluate checks if a record matches the filter criteria
	Evaluate(record reso.Record) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string

	// IsThreadSafe indicates if the filter can be evaluated concurrently
	IsThreadSafe() bool
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against record sets
type Evaluator interface {
	// Evaluate returns the records matching the filter
	Evaluate(ctx context.Context, filter CompiledFilter, records []reso.Record) ([]reso.Record, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
