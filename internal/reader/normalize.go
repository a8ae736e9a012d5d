package reader

import "strings"

// Normalize collapses embedded newlines and tabs in a single log line
// into spaces so a LogRecord.Message is always a single display line
// (a multiline-merged message is normalized too after its lines are
// joined, so merged records are single display lines as well). Each
// such character becomes one space; runs are not collapsed. Normalize is
// idempotent: normalizing an already-normalized string returns it
// unchanged.
func Normalize(s string) string {
	if strings.IndexAny(s, "\n\t\r") == -1 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n', '\t', '\r':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
