package sentiment

import "testing"

func TestSummarize(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"empty description", "Title here.", "", "Title here."},
		{"longest sentence", "t", "Short. This one is the longest sentence! Mid one?", "This one is the longest sentence!"},
		{"first wins on tie", "t", "Aaaa. Bbb.", "Aaaa."},
		{"no terminator", "t", "  no punctuation at all  ", "no punctuation at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.title, tt.description); got != tt.want {
				t.Fatalf("Summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}
