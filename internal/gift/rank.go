package gift

import (
	"slices"
	"strings"

	"github.com/onnwee/giftbooks/internal/ranking"
)

// MaxResults caps how many gifts Rank returns.
const MaxResults = 10

// Ranker scores candidates against a profile using a fixed set of weights.
// A Ranker is immutable and safe for concurrent use.
type Ranker struct {
	weights *ranking.Weights
}

// NewRanker creates a Ranker. Nil weights mean ranking.DefaultWeights.
func NewRanker(weights *ranking.Weights) *Ranker {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	w := *weights
	return &Ranker{weights: &w}
}

var defaultRanker = NewRanker(nil)

// Rank scores candidates with the default weights. See Ranker.Rank.
func Rank(candidates []CandidateRecord, profile RecipientProfile) []RankedGift {
	return defaultRanker.Rank(candidates, profile)
}

type scoredGift struct {
	gift  RankedGift
	score int
}

// Rank drops untitled candidates, scores the rest against the profile and
// returns at most MaxResults gifts ordered by descending score. Equal scores
// keep their input order. The result is never nil.
func (r *Ranker) Rank(candidates []CandidateRecord, profile RecipientProfile) []RankedGift {
	p := profile.WithDefaults()
	tokens := p.matchTokens()

	scored := make([]scoredGift, 0, len(candidates))
	for _, c := range candidates {
		if c.Title == "" {
			continue
		}
		scored = append(scored, scoredGift{
			gift:  shape(c),
			score: r.Score(c, p.AgeGroup, tokens),
		})
	}

	slices.SortStableFunc(scored, func(a, b scoredGift) int {
		return b.score - a.score
	})

	out := make([]RankedGift, 0, min(len(scored), MaxResults))
	for _, s := range head(scored, MaxResults) {
		out = append(out, s.gift)
	}
	return out
}

// Score computes the relevance of one candidate. tokens must be lowercased.
func (r *Ranker) Score(c CandidateRecord, age AgeGroup, tokens []string) int {
	title := strings.ToLower(c.Title)
	subjects := strings.ToLower(strings.Join(c.Subjects, " "))

	titleHits, subjectHits := ranking.InterestMatches(title, subjects, tokens)

	return ranking.CompositeScore(ranking.Signals{
		TitleMatches:   titleHits,
		SubjectMatches: subjectHits,
		AgeMatch:       ageMatches(age, subjects),
		HasCover:       c.CoverID != 0,
		HasAuthor:      len(c.AuthorNames) > 0,
	}, r.weights)
}

// ageMatches reports whether the lowercased subjects suit the age group.
func ageMatches(age AgeGroup, subjects string) bool {
	switch age {
	case AgeKid:
		return strings.Contains(subjects, "children")
	case AgeTeen:
		return strings.Contains(subjects, "young adult") || strings.Contains(subjects, "teen")
	default:
		return false
	}
}
