package gift

import (
	"reflect"
	"strings"
	"testing"
)

// TestNormalizeInterests tests comma splitting, trimming and capping.
func TestNormalizeInterests(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "empty", raw: "", expected: nil},
		{name: "only separators", raw: " , ,, ", expected: []string{}},
		{name: "trimmed", raw: " tech ,cooking,  travel ", expected: []string{"tech", "cooking", "travel"}},
		{name: "order preserved", raw: "b,a,c", expected: []string{"b", "a", "c"}},
		{name: "case preserved", raw: "Space", expected: []string{"Space"}},
		{
			name:     "capped at six",
			raw:      "a,b,c,d,e,f,g,h",
			expected: []string{"a", "b", "c", "d", "e", "f"},
		},
		{
			name:     "empties do not count toward the cap",
			raw:      "a,,b,,c,d,e,,f,g",
			expected: []string{"a", "b", "c", "d", "e", "f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeInterests(tt.raw)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("index %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

// TestBuildQueries tests the exact queries produced for representative profiles.
func TestBuildQueries(t *testing.T) {
	tests := []struct {
		name     string
		profile  RecipientProfile
		expected []string
	}{
		{
			name: "kid friend with two interests",
			profile: RecipientProfile{
				AgeGroup:     AgeKid,
				Relationship: RelationshipFriend,
				Budget:       BudgetUnder25,
				Personality:  PersonalityFunny,
				Interests:    "dinosaurs, space",
			},
			expected: []string{
				"dinosaurs children kids storybook humor comedy",
				"space children kids storybook humor comedy",
			},
		},
		{
			name: "no interests uses first six base and hint tokens",
			profile: RecipientProfile{
				AgeGroup:     AgeAdult,
				Relationship: RelationshipFriend,
				Budget:       BudgetUnder25,
				Personality:  PersonalityPractical,
			},
			expected: []string{"bestseller popular award winning humor travel hobbies"},
		},
		{
			name:     "empty profile falls back to defaults",
			profile:  RecipientProfile{},
			expected: []string{"bestseller popular award winning humor travel hobbies"},
		},
		{
			name: "only first three interests become queries",
			profile: RecipientProfile{
				AgeGroup:     AgeSenior,
				Relationship: RelationshipDad,
				Budget:       BudgetOver50,
				Personality:  PersonalitySentimental,
				Interests:    "golf, jazz, gardening, chess",
			},
			expected: []string{
				"golf biography history memoir memoir letters",
				"jazz biography history memoir memoir letters",
				"gardening biography history memoir memoir letters",
			},
		},
		{
			name: "duplicate interests are collapsed",
			profile: RecipientProfile{
				AgeGroup:     AgeTeen,
				Relationship: RelationshipChild,
				Budget:       Budget25To50,
				Personality:  PersonalityTrendy,
				Interests:    "anime, anime, music",
			},
			expected: []string{
				"anime young adult teen coming of age popular new",
				"music young adult teen coming of age popular new",
			},
		},
		{
			name: "unrecognized enums contribute no keywords",
			profile: RecipientProfile{
				AgeGroup:     "toddler",
				Relationship: "neighbor",
				Budget:       "free",
				Personality:  "grumpy",
				Interests:    "trains",
			},
			expected: []string{"trains"},
		},
		{
			name: "unrecognized age still uses relationship and budget",
			profile: RecipientProfile{
				AgeGroup:     "toddler",
				Relationship: RelationshipCoworker,
				Budget:       BudgetUnder25,
				Personality:  PersonalityPractical,
			},
			expected: []string{"productivity business self improvement short reads paperback how to"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQueries(tt.profile)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestBuildQueries_Bounds checks count, distinctness and non-emptiness over
// every combination of valid enum values.
func TestBuildQueries_Bounds(t *testing.T) {
	opts := ProfileOptions()
	interestSets := []string{"", "space", "a, b", "a, b, c, d, e, f, g", "x, x, x, x"}

	for _, age := range opts.AgeGroups {
		for _, rel := range opts.Relationships {
			for _, budget := range opts.Budgets {
				for _, pers := range opts.Personalities {
					for _, interests := range interestSets {
						profile := RecipientProfile{
							AgeGroup:     age,
							Relationship: rel,
							Budget:       budget,
							Personality:  pers,
							Interests:    interests,
						}
						queries := BuildQueries(profile)

						if len(queries) < 1 || len(queries) > MaxQueries {
							t.Fatalf("%+v: expected 1..%d queries, got %d", profile, MaxQueries, len(queries))
						}
						seen := make(map[string]bool)
						for _, q := range queries {
							if strings.TrimSpace(q) == "" {
								t.Fatalf("%+v: empty query in %q", profile, queries)
							}
							if seen[q] {
								t.Fatalf("%+v: duplicate query %q", profile, q)
							}
							seen[q] = true
						}
					}
				}
			}
		}
	}
}

// TestBuildQueries_FirstQueryContainsKeyword checks the first query leads with
// the first interest and carries at least one keyword token.
func TestBuildQueries_FirstQueryContainsKeyword(t *testing.T) {
	profile := RecipientProfile{
		AgeGroup:     AgeKid,
		Relationship: RelationshipFriend,
		Budget:       BudgetUnder25,
		Personality:  PersonalityFunny,
		Interests:    "dinosaurs, space",
	}
	queries := BuildQueries(profile)
	if len(queries) == 0 {
		t.Fatal("expected at least one query")
	}
	first := queries[0]
	if !strings.HasPrefix(first, "dinosaurs") {
		t.Errorf("expected first query to start with %q, got %q", "dinosaurs", first)
	}

	var keywords []string
	keywords = append(keywords, ageKeywords(AgeKid)...)
	keywords = append(keywords, relationshipKeywords(RelationshipFriend)...)
	keywords = append(keywords, budgetKeywords(BudgetUnder25)...)
	keywords = append(keywords, personalityHints(PersonalityFunny)...)

	found := false
	for _, k := range keywords {
		if strings.Contains(first, k) {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected %q to contain a profile keyword", first)
	}
}

// TestBuildQueries_Deterministic checks repeated calls agree.
func TestBuildQueries_Deterministic(t *testing.T) {
	profile := RecipientProfile{Interests: "tech, cooking, travel"}
	first := BuildQueries(profile)
	for i := 0; i < 10; i++ {
		if got := BuildQueries(profile); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d: expected %q, got %q", i, first, got)
		}
	}
}

// TestKeywordTables_FreshSlices checks lookups can't be mutated through.
func TestKeywordTables_FreshSlices(t *testing.T) {
	a := ageKeywords(AgeKid)
	a[0] = "mutated"
	if ageKeywords(AgeKid)[0] != "children" {
		t.Error("age keyword table was mutated through a returned slice")
	}
}

func TestBuildQueries_NoKeywords(t *testing.T) {
	profile := RecipientProfile{AgeGroup: "toddler", Relationship: "boss", Budget: "free", Personality: "grumpy"}

	queries := BuildQueries(profile)
	if queries == nil {
		t.Fatal("expected a non-nil slice")
	}
	if len(queries) != 0 {
		t.Errorf("expected no queries for a profile without keywords, got %q", queries)
	}

	profile.Interests = "chess"
	if got := BuildQueries(profile); len(got) != 1 || got[0] != "chess" {
		t.Errorf("BuildQueries with only an interest = %q, want [chess]", got)
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "", "b", "a", ""})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("dedupe = %q, want [a b]", got)
	}
}
