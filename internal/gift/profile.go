package gift

import "strings"

// AgeGroup is the recipient's age bracket.
type AgeGroup string

// Supported age groups.
const (
	AgeKid    AgeGroup = "kid"
	AgeTeen   AgeGroup = "teen"
	AgeAdult  AgeGroup = "adult"
	AgeSenior AgeGroup = "senior"
)

// Relationship is how the giver relates to the recipient.
type Relationship string

// Supported relationships.
const (
	RelationshipPartner  Relationship = "partner"
	RelationshipMom      Relationship = "mom"
	RelationshipDad      Relationship = "dad"
	RelationshipFriend   Relationship = "friend"
	RelationshipCoworker Relationship = "coworker"
	RelationshipChild    Relationship = "child"
)

// Budget is the price tier the giver has in mind.
type Budget string

// Supported budget tiers.
const (
	BudgetUnder25 Budget = "under25"
	Budget25To50  Budget = "25to50"
	BudgetOver50  Budget = "over50"
)

// Personality nudges the tone of the suggested books.
type Personality string

// Supported personalities.
const (
	PersonalityPractical   Personality = "practical"
	PersonalitySentimental Personality = "sentimental"
	PersonalityTrendy      Personality = "trendy"
	PersonalityFunny       Personality = "funny"
)

// Defaults applied to fields the caller left empty.
const (
	DefaultAgeGroup     = AgeAdult
	DefaultRelationship = RelationshipFriend
	DefaultBudget       = BudgetUnder25
	DefaultPersonality  = PersonalityPractical
)

// MaxInterests caps how many interests are considered when building queries.
const MaxInterests = 6

// RecipientProfile describes who the gift is for. It is read-only for the
// duration of a request.
type RecipientProfile struct {
	AgeGroup     AgeGroup     `json:"ageGroup"`
	Relationship Relationship `json:"relationship"`
	Budget       Budget       `json:"budget"`
	Personality  Personality  `json:"personality"`
	// Interests is free text, comma-delimited.
	Interests string `json:"interests"`
	// Notes is carried along but not used for matching.
	Notes string `json:"notes"`
}

// WithDefaults returns a copy of p with empty enum fields set to their defaults.
// Values that are present but unrecognized are kept; keyword lookups treat them
// as contributing nothing.
func (p RecipientProfile) WithDefaults() RecipientProfile {
	if p.AgeGroup == "" {
		p.AgeGroup = DefaultAgeGroup
	}
	if p.Relationship == "" {
		p.Relationship = DefaultRelationship
	}
	if p.Budget == "" {
		p.Budget = DefaultBudget
	}
	if p.Personality == "" {
		p.Personality = DefaultPersonality
	}
	return p
}

// InterestList returns the normalized interests: comma-split, trimmed, empty
// entries dropped, original order kept and capped at MaxInterests.
func (p RecipientProfile) InterestList() []string {
	return NormalizeInterests(p.Interests)
}

// NormalizeInterests splits raw comma-delimited interests into at most
// MaxInterests trimmed, non-empty entries.
func NormalizeInterests(raw string) []string {
	if raw == "" {
		return nil
	}

	out := make([]string, 0, MaxInterests)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == MaxInterests {
			break
		}
	}
	return out
}

// matchTokens returns every interest lowercased for substring matching. Unlike
// InterestList it is not capped.
func (p RecipientProfile) matchTokens() []string {
	var tokens []string
	for _, part := range strings.Split(strings.ToLower(p.Interests), ",") {
		if part = strings.TrimSpace(part); part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// Options lists the accepted values for each enum field, in display order.
type Options struct {
	AgeGroups     []AgeGroup     `json:"ageGroups"`
	Relationships []Relationship `json:"relationships"`
	Budgets       []Budget       `json:"budgets"`
	Personalities []Personality  `json:"personalities"`
}

// ProfileOptions returns the accepted enum values.
func ProfileOptions() Options {
	return Options{
		AgeGroups:     []AgeGroup{AgeKid, AgeTeen, AgeAdult, AgeSenior},
		Relationships: []Relationship{RelationshipPartner, RelationshipMom, RelationshipDad, RelationshipFriend, RelationshipCoworker, RelationshipChild},
		Budgets:       []Budget{BudgetUnder25, Budget25To50, BudgetOver50},
		Personalities: []Personality{PersonalityPractical, PersonalitySentimental, PersonalityTrendy, PersonalityFunny},
	}
}
