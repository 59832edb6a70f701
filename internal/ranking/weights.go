package ranking

import "strings"

// Signals holds the per-candidate observations that feed the composite score.
type Signals struct {
	TitleMatches   int  // Interest tokens found in the title
	SubjectMatches int  // Interest tokens found in the joined subjects
	AgeMatch       bool // Subjects fit the recipient's age group
	HasCover       bool // Candidate carries a cover image identifier
	HasAuthor      bool // Candidate names at least one author
}

// InterestMatches counts how many tokens occur as substrings of title and of
// subjects. Both inputs are expected to be lowercased already, as are tokens.
// Empty tokens never match.
func InterestMatches(title, subjects string, tokens []string) (titleHits, subjectHits int) {
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if strings.Contains(title, token) {
			titleHits++
		}
		if strings.Contains(subjects, token) {
			subjectHits++
		}
	}
	return titleHits, subjectHits
}

// InterestScore weights title and subject hits.
func InterestScore(titleHits, subjectHits int, weights *Weights) int {
	if weights == nil {
		weights = DefaultWeights()
	}
	return titleHits*weights.TitleMatch + subjectHits*weights.SubjectMatch
}

// AgeBonus returns the age weight when matched, otherwise 0.
func AgeBonus(matched bool, weights *Weights) int {
	if weights == nil {
		weights = DefaultWeights()
	}
	if !matched {
		return 0
	}
	return weights.AgeMatch
}

// CompletenessScore rewards candidates that render well: a cover image and a
// known author.
func CompletenessScore(hasCover, hasAuthor bool, weights *Weights) int {
	if weights == nil {
		weights = DefaultWeights()
	}
	score := 0
	if hasCover {
		score += weights.Cover
	}
	if hasAuthor {
		score += weights.Author
	}
	return score
}

// CompositeScore computes the final relevance score for one candidate.
// Uses the default weights when weights is nil.
//
// Default formula:
//
//	4*title_hits + 2*subject_hits + 3*age_match + 2*has_cover + 1*has_author
func CompositeScore(s Signals, weights *Weights) int {
	if weights == nil {
		weights = DefaultWeights()
	}
	return InterestScore(s.TitleMatches, s.SubjectMatches, weights) +
		AgeBonus(s.AgeMatch, weights) +
		CompletenessScore(s.HasCover, s.HasAuthor, weights)
}
