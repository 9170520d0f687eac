package filter

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jeremeybingham/reso-client/reso"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables compiled-filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			if cache, err := lru.New[string, CompiledFilter](size); err == nil {
				c.cache = cache
			}
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lru.Cache[string, CompiledFilter]
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Record fields are dynamic per MLS, so undefined variables stay
	// legal; AsBool still forces a boolean result.
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
	}

	if c.cache != nil {
		c.cache.Add(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Evaluate evaluates the filter against a record
func (f *exprFilter) Evaluate(record reso.Record) bool {
	env := createRuntimeEnvironment(record)

	result, err := expr.Run(f.program, env)
	if err != nil {
		// Records whose data doesn't fit the expression are skipped
		// rather than failing the whole set.
		return false
	}

	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)
	addHelperFunctions(funcs)

	// Record-bound helpers are rebound per evaluation; these stubs give
	// the compiler their signatures.
	funcs["has"] = func(string) bool { return false }
	funcs["field"] = func(string) any { return nil }
	funcs["num"] = func(string) float64 { return 0 }
	funcs["str"] = func(string) string { return "" }

	return funcs
}

// addHelperFunctions adds the generic helper functions to the provided map
func addHelperFunctions(env map[string]any) {
	// Date helpers. RESO timestamps arrive as RFC 3339 strings, e.g.
	// ModificationTimestamp.
	env["parseDate"] = parseDate
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["now"] = time.Now
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
}

// parseDate parses RFC 3339 timestamps and plain dates.
func parseDate(dateStr string) time.Time {
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02", dateStr)
	return t
}

// createRuntimeEnvironment creates the runtime environment for filter evaluation
func createRuntimeEnvironment(record reso.Record) map[string]any {
	env := make(map[string]any, len(record)+16)

	addHelperFunctions(env)

	// Record fields are addressable directly: City == "Austin".
	for key, value := range record {
		env[key] = value
	}
	env["Record"] = record

	// Record-bound helpers for missing or loosely-typed fields.
	env["has"] = createHasFunc(record)
	env["field"] = createFieldFunc(record)
	env["num"] = createNumFunc(record)
	env["str"] = createStrFunc(record)

	return env
}

// Helper factory functions bound to one record through closures

func createHasFunc(record reso.Record) func(string) bool {
	return func(name string) bool {
		value, ok := record[name]
		return ok && value != nil
	}
}

func createFieldFunc(record reso.Record) func(string) any {
	return func(name string) any {
		return record[name]
	}
}

func createNumFunc(record reso.Record) func(string) float64 {
	return func(name string) float64 {
		switch value := record[name].(type) {
		case float64:
			return value
		case int:
			return float64(value)
		case int64:
			return float64(value)
		case string:
			f, _ := strconv.ParseFloat(value, 64)
			return f
		default:
			return 0
		}
	}
}

func createStrFunc(record reso.Record) func(string) string {
	return func(name string) string {
		switch value := record[name].(type) {
		case string:
			return value
		case nil:
			return ""
		default:
			return fmt.Sprint(value)
		}
	}
}
