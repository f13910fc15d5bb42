package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		foodName string
		brand    string
		want     string
	}{
		{
			name:     "strips size and packaging words",
			foodName: "Fanta Zero Naranja 330 ml can",
			brand:    "Fanta",
			want:     "fanta zero naranja",
		},
		{
			name:     "prepends missing brand",
			foodName: "Zero Orange",
			brand:    "Fanta",
			want:     "fanta zero orange",
		},
		{
			name:     "dedupes hint and name",
			hint:     "Coca-Cola Zero",
			foodName: "Coca-Cola Zero Sugar",
			want:     "coca-cola zero sugar",
		},
		{
			name:     "removes pack counts",
			foodName: "Pepsi Max 6 pack",
			want:     "pepsi max",
		},
		{
			name:     "removes punctuation",
			foodName: "Doritos® Tex-Mex (family size!)",
			want:     "doritos tex-mex",
		},
		{
			name:     "only noise",
			foodName: "New Original Drink 1.5 L",
			want:     "",
		},
		{
			name: "all empty",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchQuery(tt.hint, tt.foodName, tt.brand)
			if got != tt.want {
				t.Errorf("BuildSearchQuery(%q, %q, %q) = %q, want %q", tt.hint, tt.foodName, tt.brand, got, tt.want)
			}
		})
	}
}

func TestBuildSearchQuery_Truncates(t *testing.T) {
	words := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		words = append(words, "ingredient"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}

	got := BuildSearchQuery("", strings.Join(words, " "), "")

	if len(got) > maxSearchQueryLength {
		t.Errorf("len(query) = %d, want <= %d", len(got), maxSearchQueryLength)
	}
	if strings.HasSuffix(got, " ") || !strings.HasPrefix(got, "ingredientaa") {
		t.Errorf("query = %q, want whole leading words", got)
	}
	for _, w := range strings.Fields(got) {
		if len(w) != len("ingredientaa") {
			t.Errorf("query contains partial word %q", w)
		}
	}
}

func TestBuildSearchQuery_TruncatesOnCharacters(t *testing.T) {
	words := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		words = append(words, "jamón"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}

	tests := []struct {
		name  string
		input string
	}{
		{"single long word", strings.Repeat("ñ", 150)},
		{"many words", strings.Join(words, " ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSearchQuery("", tt.input, "")

			if !utf8.ValidString(got) {
				t.Fatalf("query %q is not valid UTF-8", got)
			}
			if n := utf8.RuneCountInString(got); n == 0 || n > maxSearchQueryLength {
				t.Errorf("query has %d characters, want 1..%d", n, maxSearchQueryLength)
			}
		})
	}

	got := BuildSearchQuery("", strings.Join(words, " "), "")
	for _, w := range strings.Fields(got) {
		if utf8.RuneCountInString(w) != 7 {
			t.Errorf("query contains partial word %q", w)
		}
	}
}

func TestNormalizeForCacheKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Coca-Cola  Zero!", "cocacola zero"},
		{"  Fanta   Naranja ", "fanta naranja"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeForCacheKey(tt.input); got != tt.want {
			t.Errorf("normalizeForCacheKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
