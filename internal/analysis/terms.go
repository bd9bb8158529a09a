package analysis

import (
	"sort"
	"strings"

	"github.com/sanks011/Influence-IQ/internal/model"
)

// Detect scans a comment corpus against the rule set's watch-list tiers.
// Comments matching the exclusion-context pattern are skipped entirely for
// tier matching: tech/education discussion kept tripping near-miss
// substrings. Detection is idempotent and order-independent — detected term
// slices come back sorted.
func (r *RuleSet) Detect(comments []string) model.TermDetection {
	counts := map[model.TermTier]int{
		model.TierSevere:   0,
		model.TierModerate: 0,
		model.TierMild:     0,
	}
	seen := map[model.TermTier]map[string]struct{}{
		model.TierSevere:   {},
		model.TierModerate: {},
		model.TierMild:     {},
	}

	for _, comment := range comments {
		if r.exclusion.MatchString(comment) {
			continue
		}
		for tier, re := range r.tiers {
			matches := re.FindAllString(comment, -1)
			counts[tier] += len(matches)
			for _, m := range matches {
				seen[tier][strings.ToLower(m)] = struct{}{}
			}
		}
	}

	detected := make(map[model.TermTier][]string, len(seen))
	for tier, set := range seen {
		terms := make([]string, 0, len(set))
		for term := range set {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		detected[tier] = terms
	}

	return model.TermDetection{
		Counts:           counts,
		Detected:         detected,
		EducationalTerms: r.CountEducational(comments),
	}
}

// CountEducational counts educational-vocabulary occurrences across the
// whole corpus. Unlike tier detection it does not honor the exclusion
// pattern — the exclusion list is itself full of tech vocabulary.
func (r *RuleSet) CountEducational(comments []string) int {
	total := 0
	for _, comment := range comments {
		total += len(r.educational.FindAllString(comment, -1))
	}
	return total
}
