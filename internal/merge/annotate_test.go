package merge

import "testing"

/*
Test_Annotation_Value covers the three source-column modes for a nested path.
*/
func Test_Annotation_Value(t *testing.T) {
	const p = "/data/run1/results.tsv"
	cases := []struct {
		mode string
		want string
	}{
		{"name", "results.tsv"},
		{"stem", "results"},
		{"path", "/data/run1/results.tsv"},
		{"", "results.tsv"}, // default
	}
	for _, tc := range cases {
		a := Annotation{Enabled: true, Column: "source_file", Mode: tc.mode}
		if got := a.Value(p); got != tc.want {
			t.Errorf("mode %q: got %q, want %q", tc.mode, got, tc.want)
		}
	}
}

/*
Test_Deduper verifies duplicate detection and the structural field separator.
*/
func Test_Deduper(t *testing.T) {
	d := newDeduper()

	if d.isDup([]string{"a", "b"}) {
		t.Fatalf("first row must not be a duplicate")
	}
	if !d.isDup([]string{"a", "b"}) {
		t.Fatalf("repeat row must be a duplicate")
	}
	// ["ab",""] and ["a","b"] differ structurally.
	if d.isDup([]string{"ab", ""}) {
		t.Fatalf("field boundaries must matter")
	}
}
