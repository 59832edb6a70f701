package gift

import (
	"reflect"
	"testing"

	"github.com/onnwee/giftbooks/internal/ranking"
)

func keys(gifts []RankedGift) []string {
	out := make([]string, 0, len(gifts))
	for _, g := range gifts {
		out = append(out, g.Key)
	}
	return out
}

// TestRank_Empty tests that empty and nil inputs yield an empty, non-nil list.
func TestRank_Empty(t *testing.T) {
	for _, in := range [][]CandidateRecord{nil, {}} {
		got := Rank(in, RecipientProfile{})
		if got == nil {
			t.Fatal("expected non-nil result")
		}
		if len(got) != 0 {
			t.Errorf("expected empty result, got %d entries", len(got))
		}
	}
}

// TestRank_DropsUntitled tests that candidates without a title are removed.
func TestRank_DropsUntitled(t *testing.T) {
	got := Rank([]CandidateRecord{
		{Key: "/a"},
		{Key: "/b", Title: "Zoo"},
	}, RecipientProfile{})

	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Key != "/b" {
		t.Errorf("expected key /b, got %s", got[0].Key)
	}
}

// TestRank_CoverRanksHigher tests score monotonicity in the cover signal.
func TestRank_CoverRanksHigher(t *testing.T) {
	got := Rank([]CandidateRecord{
		{Key: "/no-cover", Title: "Same"},
		{Key: "/cover", Title: "Same", CoverID: 1},
	}, RecipientProfile{})

	if want := []string{"/cover", "/no-cover"}; !reflect.DeepEqual(keys(got), want) {
		t.Errorf("expected %v, got %v", want, keys(got))
	}
}

// TestRank_InterestTitleMatch tests the title interest bonus.
func TestRank_InterestTitleMatch(t *testing.T) {
	got := Rank([]CandidateRecord{
		{Key: "/other", Title: "Gardening Basics"},
		{Key: "/space", Title: "Space Adventures"},
	}, RecipientProfile{Interests: "space"})

	if want := []string{"/space", "/other"}; !reflect.DeepEqual(keys(got), want) {
		t.Errorf("expected %v, got %v", want, keys(got))
	}
}

// TestRank_Scores tests the score of individual candidates via Ranker.Score.
func TestRank_Scores(t *testing.T) {
	r := NewRanker(nil)

	tests := []struct {
		name      string
		candidate CandidateRecord
		age       AgeGroup
		interests string
		expected  int
	}{
		{
			name:      "bare title",
			candidate: CandidateRecord{Title: "Plain"},
			age:       AgeAdult,
			expected:  0,
		},
		{
			name:      "cover and author",
			candidate: CandidateRecord{Title: "Plain", CoverID: 9, AuthorNames: []string{"A"}},
			age:       AgeAdult,
			expected:  3,
		},
		{
			name:      "title and subject hit for one token",
			candidate: CandidateRecord{Title: "Space Atlas", Subjects: []string{"Outer SPACE"}},
			age:       AgeAdult,
			interests: "Space",
			expected:  6,
		},
		{
			name:      "two tokens in title",
			candidate: CandidateRecord{Title: "Cooking and Travel"},
			age:       AgeAdult,
			interests: "cooking, travel, tech",
			expected:  8,
		},
		{
			name:      "kid bonus",
			candidate: CandidateRecord{Title: "Bedtime", Subjects: []string{"Children's stories"}},
			age:       AgeKid,
			expected:  3,
		},
		{
			name:      "kid bonus needs kid age group",
			candidate: CandidateRecord{Title: "Bedtime", Subjects: []string{"Children's stories"}},
			age:       AgeAdult,
			expected:  0,
		},
		{
			name:      "teen bonus via young adult",
			candidate: CandidateRecord{Title: "Hoops", Subjects: []string{"Young Adult fiction"}},
			age:       AgeTeen,
			expected:  3,
		},
		{
			name:      "teen bonus via teen",
			candidate: CandidateRecord{Title: "Hoops", Subjects: []string{"Teenagers"}},
			age:       AgeTeen,
			expected:  3,
		},
		{
			name:      "interests are not capped for scoring",
			candidate: CandidateRecord{Title: "g"},
			age:       AgeAdult,
			interests: "a,b,c,d,e,f,g",
			expected:  4,
		},
		{
			name:      "empty author list is no author",
			candidate: CandidateRecord{Title: "x", AuthorNames: []string{}},
			age:       AgeAdult,
			expected:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := RecipientProfile{Interests: tt.interests}.matchTokens()
			if got := r.Score(tt.candidate, tt.age, tokens); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

// TestRank_StableTies tests that equal scores keep input order.
func TestRank_StableTies(t *testing.T) {
	got := Rank([]CandidateRecord{
		{Key: "/1", Title: "One"},
		{Key: "/2", Title: "Two", CoverID: 5},
		{Key: "/3", Title: "Three"},
		{Key: "/4", Title: "Four", CoverID: 6},
	}, RecipientProfile{})

	if want := []string{"/2", "/4", "/1", "/3"}; !reflect.DeepEqual(keys(got), want) {
		t.Errorf("expected %v, got %v", want, keys(got))
	}
}

// TestRank_TruncatesToTen tests the result cap keeps the highest scores.
func TestRank_TruncatesToTen(t *testing.T) {
	var in []CandidateRecord
	for i := 0; i < 15; i++ {
		c := CandidateRecord{Key: "/low", Title: "Low"}
		if i >= 10 {
			c = CandidateRecord{Key: "/high", Title: "High", CoverID: int64(i)}
		}
		in = append(in, c)
	}

	got := Rank(in, RecipientProfile{})
	if len(got) != MaxResults {
		t.Fatalf("expected %d results, got %d", MaxResults, len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].Key != "/high" {
			t.Errorf("index %d: expected /high, got %s", i, got[i].Key)
		}
	}
}

// TestRank_Shaping tests the derived display fields.
func TestRank_Shaping(t *testing.T) {
	got := Rank([]CandidateRecord{{
		Key:              "/works/OL1W",
		Title:            "Shaped",
		AuthorNames:      []string{"First Author", "Second Author"},
		FirstPublishYear: 1999,
		Subjects:         []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"},
		CoverID:          12345,
	}}, RecipientProfile{})

	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	g := got[0]

	if g.Author != "First Author" {
		t.Errorf("expected first author, got %q", g.Author)
	}
	if g.Year == nil || *g.Year != 1999 {
		t.Errorf("expected year 1999, got %v", g.Year)
	}
	if len(g.Subjects) != MaxSubjects {
		t.Errorf("expected %d subjects, got %d", MaxSubjects, len(g.Subjects))
	}
	if g.CoverURL == nil || *g.CoverURL != "https://covers.openlibrary.org/b/id/12345-M.jpg" {
		t.Errorf("unexpected cover url: %v", g.CoverURL)
	}
	if g.CatalogURL == nil || *g.CatalogURL != "https://openlibrary.org/works/OL1W" {
		t.Errorf("unexpected catalog url: %v", g.CatalogURL)
	}
}

// TestRank_ShapingDefaults tests defaults for absent fields.
func TestRank_ShapingDefaults(t *testing.T) {
	got := Rank([]CandidateRecord{{Title: "Bare"}}, RecipientProfile{})
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	g := got[0]

	if g.Author != UnknownAuthor {
		t.Errorf("expected %q, got %q", UnknownAuthor, g.Author)
	}
	if g.Year != nil {
		t.Errorf("expected nil year, got %d", *g.Year)
	}
	if g.Subjects == nil || len(g.Subjects) != 0 {
		t.Errorf("expected empty non-nil subjects, got %v", g.Subjects)
	}
	if g.CoverURL != nil {
		t.Errorf("expected nil cover url, got %s", *g.CoverURL)
	}
	if g.CatalogURL != nil {
		t.Errorf("expected nil catalog url, got %s", *g.CatalogURL)
	}
}

// TestRank_DoesNotAliasInput tests that output subjects don't share storage
// with the input record.
func TestRank_DoesNotAliasInput(t *testing.T) {
	subjects := []string{"one", "two"}
	got := Rank([]CandidateRecord{{Title: "T", Subjects: subjects}}, RecipientProfile{})
	got[0].Subjects[0] = "changed"
	if subjects[0] != "one" {
		t.Error("ranked gift aliases the candidate's subjects")
	}
}

// TestRank_Idempotent tests that repeated calls agree.
func TestRank_Idempotent(t *testing.T) {
	in := []CandidateRecord{
		{Key: "/a", Title: "Space Cats", CoverID: 1},
		{Key: "/b", Title: "Dogs", AuthorNames: []string{"X"}},
		{Key: "/c"},
		{Key: "/d", Title: "Space", Subjects: []string{"space"}},
	}
	profile := RecipientProfile{Interests: "space"}

	first := Rank(in, profile)
	second := Rank(in, profile)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical output:\n%+v\n%+v", first, second)
	}
}

// TestNewRanker_CustomWeights tests that calibrated weights change ordering.
func TestNewRanker_CustomWeights(t *testing.T) {
	in := []CandidateRecord{
		{Key: "/cover", Title: "Plain", CoverID: 1},
		{Key: "/author", Title: "Plain", AuthorNames: []string{"A"}},
	}

	if got := keys(Rank(in, RecipientProfile{})); got[0] != "/cover" {
		t.Fatalf("default weights: expected /cover first, got %v", got)
	}

	r := NewRanker(&ranking.Weights{TitleMatch: 4, SubjectMatch: 2, AgeMatch: 3, Cover: 1, Author: 5})
	if got := keys(r.Rank(in, RecipientProfile{})); got[0] != "/author" {
		t.Errorf("custom weights: expected /author first, got %v", got)
	}
}

// BenchmarkRank benchmarks ranking a typical merged result set.
func BenchmarkRank(b *testing.B) {
	var in []CandidateRecord
	for i := 0; i < 60; i++ {
		in = append(in, CandidateRecord{
			Key:         "/works/OL" + string(rune('A'+i%26)) + "W",
			Title:       "Cooking for travel",
			AuthorNames: []string{"Someone"},
			Subjects:    []string{"cooking", "travel", "food"},
			CoverID:     int64(i),
		})
	}
	profile := RecipientProfile{Interests: "tech, cooking, travel"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank(in, profile)
	}
}
