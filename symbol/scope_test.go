package symbol

import (
	"reflect"
	"testing"
)

func TestScopeIDs(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
		renames  []Rename
	}{
		{
			name:     "no ids",
			fragment: `<linearGradient/>`,
			want:     `<linearGradient/>`,
		},
		{
			name:     "single",
			fragment: `<linearGradient id="g"/>`,
			want:     `<linearGradient id="s_g"/>`,
			renames:  []Rename{{Old: "g", New: "s_g"}},
		},
		{
			name:     "nested and ordered",
			fragment: `<clipPath id="c"><rect id="r"/></clipPath><mask id="m"/>`,
			want:     `<clipPath id="s_c"><rect id="s_r"/></clipPath><mask id="s_m"/>`,
			renames:  []Rename{{Old: "c", New: "s_c"}, {Old: "r", New: "s_r"}, {Old: "m", New: "s_m"}},
		},
		{
			name:     "other attributes ending with id",
			fragment: `<pattern data-id="x" grid="y" id="p"/>`,
			want:     `<pattern data-id="x" grid="y" id="s_p"/>`,
			renames:  []Rename{{Old: "p", New: "s_p"}},
		},
		{
			name:     "whitespace before attribute preserved",
			fragment: "<filter\n\tid=\"f\"/>",
			want:     "<filter\n\tid=\"s_f\"/>",
			renames:  []Rename{{Old: "f", New: "s_f"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, renames := ScopeIDs(tt.fragment, "s")
			if got != tt.want {
				t.Errorf("ScopeIDs() = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(renames, tt.renames) {
				t.Errorf("ScopeIDs() renames = %v, want %v", renames, tt.renames)
			}
		})
	}
}

func TestRewriteRefs(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		renames []Rename
		want    string
	}{
		{
			name:   "no renames",
			markup: `<rect fill="url(#a)"/>`,
			want:   `<rect fill="url(#a)"/>`,
		},
		{
			name:    "every occurrence",
			markup:  `<rect fill="url(#a)" stroke="url(#a)" style="mask:url(#a)"/>`,
			renames: []Rename{{Old: "a", New: "s_a"}},
			want:    `<rect fill="url(#s_a)" stroke="url(#s_a)" style="mask:url(#s_a)"/>`,
		},
		{
			name:    "unmatched reference left alone",
			markup:  `<rect fill="url(#a)" mask="url(#b)"/>`,
			renames: []Rename{{Old: "a", New: "s_a"}},
			want:    `<rect fill="url(#s_a)" mask="url(#b)"/>`,
		},
		{
			name:    "prefix of other id is not touched",
			markup:  `<rect fill="url(#ab)"/>`,
			renames: []Rename{{Old: "a", New: "s_a"}},
			want:    `<rect fill="url(#ab)"/>`,
		},
		{
			name:    "no chained renames",
			markup:  `<rect fill="url(#a)" stroke="url(#s_a)"/>`,
			renames: []Rename{{Old: "a", New: "s_a"}, {Old: "s_a", New: "s_s_a"}},
			want:    `<rect fill="url(#s_a)" stroke="url(#s_s_a)"/>`,
		},
		{
			name:    "regexp metacharacters in id",
			markup:  `<rect fill="url(#a.b+c)" stroke="url(#aXb+c)"/>`,
			renames: []Rename{{Old: "a.b+c", New: "s_a.b+c"}},
			want:    `<rect fill="url(#s_a.b+c)" stroke="url(#aXb+c)"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteRefs(tt.markup, tt.renames); got != tt.want {
				t.Errorf("RewriteRefs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOption_Resolve(t *testing.T) {
	var zero Option[[]string]
	if got := zero.Resolve("a"); got != nil {
		t.Errorf("zero Option resolved to %v", got)
	}
	if zero.perDoc != nil {
		t.Error("zero Option reported as per document")
	}

	static := Static([]string{"fill"})
	if got := static.Resolve("anything"); !reflect.DeepEqual(got, []string{"fill"}) {
		t.Errorf("Static().Resolve() = %v", got)
	}

	calls := 0
	per := PerDocument(func(docID string) string {
		calls++
		return "doc:" + docID
	})
	if per.perDoc == nil {
		t.Error("PerDocument option not reported as per document")
	}
	if got := per.Resolve("x.svg"); got != "doc:x.svg" {
		t.Errorf("PerDocument().Resolve() = %q", got)
	}
	if calls != 1 {
		t.Errorf("resolver called %d times, want 1", calls)
	}
}
