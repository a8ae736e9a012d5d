// Package filterexpr implements the Filter Engine's expression language:
// a small boolean algebra over regex and literal string matches against
// a log line, compiled once at startup into a tagged-variant tree and
// then interpreted with a recursive match over the tag on every record.
package filterexpr

import (
	"regexp"
	"strings"
)

// Expr is a compiled filter expression. Match never allocates on the
// fast path (Regex/Literal leaves just call into the stdlib matcher or
// strings.Contains); And/Or/Not/Group are pure control flow over their
// children.
type Expr interface {
	Match(line string) bool
	String() string
}

// Regex matches when its compiled pattern is found anywhere in the line.
type Regex struct {
	Pattern string
	re      *regexp.Regexp
}

// NewRegex compiles pattern into a Regex expression.
func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Regex{Pattern: pattern, re: re}, nil
}

func (r *Regex) Match(line string) bool { return r.re.MatchString(line) }
func (r *Regex) String() string         { return "/" + r.Pattern + "/" }

// Literal matches when its text appears verbatim (substring) in the line.
type Literal struct {
	Text string
}

func (l *Literal) Match(line string) bool {
	return strings.Contains(line, l.Text)
}
func (l *Literal) String() string { return `"` + l.Text + `"` }

// And matches when both children match.
type And struct{ Left, Right Expr }

func (a *And) Match(line string) bool { return a.Left.Match(line) && a.Right.Match(line) }
func (a *And) String() string         { return "(" + a.Left.String() + " && " + a.Right.String() + ")" }

// Or matches when either child matches.
type Or struct{ Left, Right Expr }

func (o *Or) Match(line string) bool { return o.Left.Match(line) || o.Right.Match(line) }
func (o *Or) String() string         { return "(" + o.Left.String() + " || " + o.Right.String() + ")" }

// Not matches when its child does not.
type Not struct{ Child Expr }

func (n *Not) Match(line string) bool { return !n.Child.Match(line) }
func (n *Not) String() string         { return "!" + n.Child.String() }

// Group is a parenthesized sub-expression, kept as its own node (rather
// than collapsed away) so String() can round-trip the original grouping
// for diagnostics.
type Group struct{ Child Expr }

func (g *Group) Match(line string) bool { return g.Child.Match(line) }
func (g *Group) String() string         { return "(" + g.Child.String() + ")" }

// Combine builds the Filter Engine's single evaluated tree from the two
// independently-configured trees: matches(include, r) && !matches(exclude, r).
// A nil include is the identity "accept all"; a nil exclude is the
// identity "exclude nothing" - both match Engine's own nil-Expr ==
// pass-everything convention, so Combine never has to fabricate a
// constant-true leaf.
func Combine(include, exclude Expr) Expr {
	switch {
	case include == nil && exclude == nil:
		return nil
	case exclude == nil:
		return include
	case include == nil:
		return &Not{Child: exclude}
	default:
		return &And{Left: include, Right: &Not{Child: exclude}}
	}
}
