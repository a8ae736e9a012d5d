package reader

import (
	"strings"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no whitespace", "hello world", "hello world"},
		{"embedded newline", "hello\nworld", "hello world"},
		{"embedded tab", "hello\tworld", "hello world"},
		{"crlf", "hello\r\nworld", "hello  world"},
		{"idempotent", Normalize("a\nb\tc"), "a b c"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize not idempotent: Normalize(%q) = %q, want %q", got, again, got)
			}
		})
	}
}

func TestSplitTimestamp(t *testing.T) {
	line := "2024-01-02T15:04:05.123456789Z hello world"
	ts, msg := splitTimestamp(line)
	if msg != "hello world" {
		t.Errorf("splitTimestamp message = %q, want %q", msg, "hello world")
	}
	want, _ := time.Parse(time.RFC3339Nano, "2024-01-02T15:04:05.123456789Z")
	if !ts.Equal(want) {
		t.Errorf("splitTimestamp timestamp = %v, want %v", ts, want)
	}
}

func TestSplitTimestampMalformed(t *testing.T) {
	line := "not a timestamp at all"
	before := time.Now()
	ts, msg := splitTimestamp(line)
	if msg != line {
		t.Errorf("splitTimestamp with no timestamp should return original line, got %q", msg)
	}
	if ts.Before(before) {
		t.Errorf("splitTimestamp fallback time should be >= test start")
	}
}

func TestScanner(t *testing.T) {
	r := strings.NewReader("line one\nline two\nline three")
	sc := newScanner(r)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scanner error: %v", err)
	}

	want := []string{"line one", "line two", "line three"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
