package structure

import "testing"

func TestCodeGenerator_Sequence(t *testing.T) {
	g := NewCodeGenerator()
	tests := []struct {
		level int
		want  string
	}{
		{1, "1"},
		{2, "1.1"},
		{2, "1.2"},
		{1, "2"},
		{2, "2.1"},
		{3, "2.1.1"},
		{2, "2.2"}, // deeper counter (level 3) must have reset
	}
	for i, tt := range tests {
		got := g.Next(tt.level)
		if got != tt.want {
			t.Errorf("step %d: Next(%d) = %q, want %q", i, tt.level, got, tt.want)
		}
	}
}

func TestCodeGenerator_DeeperCounterResets(t *testing.T) {
	g := NewCodeGenerator()
	g.Next(1)          // "1"
	g.Next(2)          // "1.1"
	g.Next(3)          // "1.1.1"
	got := g.Next(1)   // back to top level
	if got != "2" {
		t.Fatalf("Next(1) after descending = %q, want %q", got, "2")
	}
	got = g.Next(2) // level-2 counter must restart at 1 under new parent
	if got != "2.1" {
		t.Errorf("Next(2) = %q, want %q", got, "2.1")
	}
}

func TestNewCodeGeneratorWithPrefix(t *testing.T) {
	g := NewCodeGeneratorWithPrefix("2.3")
	got := g.Next(3)
	if got != "2.3.1" {
		t.Errorf("Next(3) with prefix 2.3 = %q, want %q", got, "2.3.1")
	}
	got = g.Next(3)
	if got != "2.3.2" {
		t.Errorf("Next(3) second call = %q, want %q", got, "2.3.2")
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]int{
		"1":       1,
		"1.1":     2,
		"2.3.1":   3,
		"4.1.1.1": 4,
	}
	for code, want := range tests {
		if got := Level(code); got != want {
			t.Errorf("Level(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestFromOutline_Idempotent(t *testing.T) {
	entries := outlineFixture()
	first := FromOutline(entries)
	second := FromOutline(entries)

	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Structure != second[i].Structure || first[i].Title != second[i].Title || first[i].PhysicalIndex != second[i].PhysicalIndex {
			t.Errorf("item %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
