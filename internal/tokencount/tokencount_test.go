package tokencount

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single word", "hello", 2},            // 5 chars -> ceil(5/4)
		{"short sentence", "a b c d e f", 6},   // words dominate
		{"prose", "abcdefghijklmnop", 4},       // 16 chars -> 4
		{"whitespace only", "   \n\t  ", 2},    // 7 chars -> 2, 0 words
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate(tt.text); got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateMonotonicInLength(t *testing.T) {
	short := Estimate("one two three")
	long := Estimate("one two three four five six seven eight nine ten")
	if long <= short {
		t.Errorf("longer text should estimate more tokens: %d vs %d", long, short)
	}
}
