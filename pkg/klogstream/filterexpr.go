package klogstream

import "github.com/archsyscall/klogstream/internal/filterexpr"

// FilterExpr is a compiled Filter Engine expression: a boolean algebra of
// regex/literal matches over a log line, applied after multiline merging
// and before fan-out.
type FilterExpr = filterexpr.Expr

// ParseFilterExpr compiles a filter expression string, e.g.
// `"ERROR" || panic: && !"healthcheck"`, into a FilterExpr.
func ParseFilterExpr(expr string) (FilterExpr, error) {
	return filterexpr.Parse(expr)
}
