package model

import "testing"

// TestLocationLabel tests location label rendering.
func TestLocationLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{
			name: "page only",
			loc:  Location{Page: "Dashboard"},
			want: "Dashboard",
		},
		{
			name: "page with modal",
			loc:  Location{Page: "Dashboard", Modal: "Modal"},
			want: "Dashboard > Modal",
		},
		{
			name: "element does not affect label",
			loc:  Location{Page: "Settings", Element: "button.save"},
			want: "Settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.loc.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestLocationValid tests location validation.
func TestLocationValid(t *testing.T) {
	t.Parallel()

	if (Location{Page: "Dashboard"}).Valid() != true {
		t.Error("expected location with page name to be valid")
	}
	if (Location{Element: "button.save"}).Valid() {
		t.Error("expected location without page name to be invalid")
	}
	if (Location{Page: "   "}).Valid() {
		t.Error("expected whitespace-only page name to be invalid")
	}
}

// TestSnippetDedupKey tests that dedup keys are case-insensitive on text
// but sensitive to location.
func TestSnippetDedupKey(t *testing.T) {
	t.Parallel()

	loc := Location{Page: "Page A", Element: ".btn1"}
	a := &Snippet{Text: "Submit", Location: loc, Seq: 1}
	b := &Snippet{Text: "submit", Location: loc, Seq: 2}

	if a.DedupKey() != b.DedupKey() {
		t.Error("expected same key for case-insensitive duplicate text")
	}

	c := &Snippet{Text: "Submit", Location: Location{Page: "Page B", Element: ".btn1"}}
	if a.DedupKey() == c.DedupKey() {
		t.Error("expected different keys for different pages")
	}
}
