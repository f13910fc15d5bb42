package usecase

import (
	"regexp"
	"strings"
)

const maxSearchQueryLength = 100 // characters

// Compiled regex patterns for search query cleanup
var (
	// Matches size/quantity patterns like "330 ml", "33cl", "1.5 l", "250 g", "12 oz"
	querySizePattern = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s*(?:fl\s*oz|oz|ml|cl|l|liters?|litros?|g|gr|grams?|kg)\b`)

	// Matches pack/count patterns like "6 pack", "pack of 6", "x6", "2 cans"
	queryPackPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(?:pack|pk|count|ct)\b|\bpack\s*of\s*\d+\b|\bx\s*\d+\b|\b\d+\s*(?:cans?|latas?|bottles?|botellas?)\b`)

	queryPunctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s'-]`)
	multiSpacePattern       = regexp.MustCompile(`\s+`)
)

// searchNoiseWords are packaging and marketing words that make text search worse
var searchNoiseWords = map[string]bool{
	"can": true, "lata": true, "bottle": true, "botella": true, "pack": true,
	"box": true, "bag": true, "jar": true, "carton": true, "pouch": true,
	"brick": true, "tin": true, "package": true, "packaged": true,
	"new": true, "nuevo": true, "original": true, "classic": true,
	"size": true, "family": true, "mini": true, "maxi": true,
	"drink": true, "bebida": true, "product": true, "producto": true,
}

// BuildSearchQuery combines the free-text hint, the item name and the brand
// into one cleaned composition-database search term.
func BuildSearchQuery(textHint, name, brand string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{textHint, name} {
		if cleaned := cleanSearchText(part); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	query := dedupeWords(strings.Join(parts, " "))

	if b := cleanSearchText(brand); b != "" && !strings.Contains(query, b) {
		query = strings.TrimSpace(b + " " + query)
	}

	if runes := []rune(query); len(runes) > maxSearchQueryLength {
		query = string(runes[:maxSearchQueryLength])
		if lastSpace := strings.LastIndex(query, " "); lastSpace > len(query)/2 {
			query = query[:lastSpace]
		}
	}
	return query
}

func cleanSearchText(s string) string {
	s = strings.ToLower(s)
	s = querySizePattern.ReplaceAllString(s, " ")
	s = queryPackPattern.ReplaceAllString(s, " ")
	s = queryPunctuationPattern.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		w = strings.Trim(w, "'-")
		if w == "" || searchNoiseWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	return multiSpacePattern.ReplaceAllString(strings.Join(kept, " "), " ")
}

// dedupeWords drops repeated words, keeping the first occurrence
func dedupeWords(s string) string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(s) {
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
