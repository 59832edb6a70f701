package gift

import "strings"

const (
	// MaxQueries caps how many search queries a single profile produces.
	MaxQueries = 3

	// fallbackQueryTokens is the token count of the single query emitted when
	// the profile names no interests.
	fallbackQueryTokens = 6

	// Per-interest query shape: the interest, then this many base keywords and
	// personality hints.
	interestBaseTokens = 3
	interestHintTokens = 2
)

// BuildQueries turns a profile into between one and MaxQueries distinct,
// non-empty search query strings. The result is deterministic for a given
// profile. A profile with no interests whose enum values are all unrecognized
// has no keywords to search for and yields an empty, non-nil slice.
func BuildQueries(profile RecipientProfile) []string {
	p := profile.WithDefaults()
	interests := p.InterestList()
	base := baseKeywords(p)
	hints := personalityHints(p.Personality)

	var queries []string
	if len(interests) == 0 {
		tokens := append(append([]string{}, base...), hints...)
		queries = append(queries, joinTokens(head(tokens, fallbackQueryTokens)))
	} else {
		for _, interest := range head(interests, MaxQueries) {
			tokens := []string{interest}
			tokens = append(tokens, head(base, interestBaseTokens)...)
			tokens = append(tokens, head(hints, interestHintTokens)...)
			queries = append(queries, joinTokens(tokens))
		}
	}

	return head(dedupe(queries), MaxQueries)
}

// joinTokens space-joins tokens, skipping empty ones.
func joinTokens(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " ")
}

// dedupe drops empty strings and exact duplicates, keeping the first
// occurrence.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
