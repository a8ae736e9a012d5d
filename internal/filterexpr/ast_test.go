package filterexpr

import "testing"

func TestCombine(t *testing.T) {
	errLit := &Literal{Text: "ERROR"}
	debugLit := &Literal{Text: "DEBUG"}

	tests := []struct {
		name           string
		include        Expr
		exclude        Expr
		line           string
		wantNilCombine bool
		want           bool
	}{
		{"both nil accepts everything", nil, nil, "anything at all", true, true},
		{"include only, matching", errLit, nil, "an ERROR happened", false, true},
		{"include only, not matching", errLit, nil, "all fine", false, false},
		{"exclude only, matching exclude is dropped", nil, debugLit, "a DEBUG line", false, false},
		{"exclude only, not matching exclude passes", nil, debugLit, "an ERROR line", false, true},
		{"include and exclude, passes include and dodges exclude", errLit, debugLit, "an ERROR line", false, true},
		{"include and exclude, fails exclude even though include matches", errLit, debugLit, "an ERROR and a DEBUG line", false, false},
		{"include and exclude, fails include", errLit, debugLit, "all fine", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			combined := Combine(tc.include, tc.exclude)
			if tc.wantNilCombine {
				if combined != nil {
					t.Fatalf("Combine(nil, nil) = %v, want nil", combined)
				}
				return
			}
			if combined == nil {
				t.Fatal("Combine() returned nil unexpectedly")
			}
			if got := combined.Match(tc.line); got != tc.want {
				t.Errorf("Combine().Match(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}
