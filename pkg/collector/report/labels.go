package report

import (
	"fmt"
	"strings"
	"unicode"
)

// GroupLabel renders the human-readable section header for a group key. The
// baseline group gets a fixed label; other keys look like "l1_berti" (cache
// level, then prefetcher name) as derived by the scanner.
func GroupLabel(key, baseline string) string {
	if key == baseline {
		return "Baseline (No Prefetcher)"
	}
	parts := strings.Split(key, "_")
	if len(parts) < 2 {
		return capitalize(key)
	}
	level := strings.ToUpper(parts[0])
	name := capitalize(strings.Join(parts[1:], " "))
	return fmt.Sprintf("Data Prefetcher: %s at %s", name, level)
}

// ExperimentLabel renders the sub-header for one experiment. Identifiers of
// the form "exp3_lru_ship" name the replacement policies at L2 and LLC; any
// other shape falls back to a title-cased rendering of the identifier.
func ExperimentLabel(experiment string) string {
	parts := strings.Split(experiment, "_")
	if len(parts) >= 3 {
		num := digitsOf(parts[0])
		if num != "" {
			return fmt.Sprintf("Experiment %s: Replacement Policy %s at L2 and %s at LLC",
				num, strings.ToUpper(parts[1]), strings.ToUpper(parts[2]))
		}
	}
	words := strings.Split(experiment, "_")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
