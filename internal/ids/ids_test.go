package ids

import (
	"sort"
	"testing"
)

func TestNew_UniqueAndSortable(t *testing.T) {
	const n = 1000
	got := make([]string, n)
	seen := make(map[string]bool, n)
	for i := range got {
		id := New()
		if len(id) != 26 {
			t.Fatalf("id %q has length %d, want 26", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		got[i] = id
	}
	if !sort.StringsAreSorted(got) {
		t.Error("ids generated in sequence should sort lexicographically")
	}
}
