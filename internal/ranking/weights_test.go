package ranking

import "testing"

// TestInterestMatches tests substring counting against title and subjects.
func TestInterestMatches(t *testing.T) {
	tests := []struct {
		name            string
		title           string
		subjects        string
		tokens          []string
		wantTitleHits   int
		wantSubjectHits int
	}{
		{
			name:            "title only",
			title:           "space adventures",
			subjects:        "fiction",
			tokens:          []string{"space"},
			wantTitleHits:   1,
			wantSubjectHits: 0,
		},
		{
			name:            "both fire for the same token",
			title:           "space adventures",
			subjects:        "outer space juvenile fiction",
			tokens:          []string{"space"},
			wantTitleHits:   1,
			wantSubjectHits: 1,
		},
		{
			name:            "substring match inside a word",
			title:           "dinosaurs of the world",
			subjects:        "",
			tokens:          []string{"dino"},
			wantTitleHits:   1,
			wantSubjectHits: 0,
		},
		{
			name:            "multiple tokens",
			title:           "cooking for travel",
			subjects:        "cooking, travel",
			tokens:          []string{"cooking", "travel", "tech"},
			wantTitleHits:   2,
			wantSubjectHits: 2,
		},
		{
			name:            "empty token never matches",
			title:           "anything",
			subjects:        "anything",
			tokens:          []string{""},
			wantTitleHits:   0,
			wantSubjectHits: 0,
		},
		{
			name:            "no tokens",
			title:           "anything",
			subjects:        "anything",
			tokens:          nil,
			wantTitleHits:   0,
			wantSubjectHits: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titleHits, subjectHits := InterestMatches(tt.title, tt.subjects, tt.tokens)
			if titleHits != tt.wantTitleHits {
				t.Errorf("expected %d title hits, got %d", tt.wantTitleHits, titleHits)
			}
			if subjectHits != tt.wantSubjectHits {
				t.Errorf("expected %d subject hits, got %d", tt.wantSubjectHits, subjectHits)
			}
		})
	}
}

// TestCompositeScore tests the composite score with default weights.
func TestCompositeScore(t *testing.T) {
	tests := []struct {
		name     string
		signals  Signals
		expected int
	}{
		{
			name:     "nothing",
			signals:  Signals{},
			expected: 0,
		},
		{
			name:     "cover only",
			signals:  Signals{HasCover: true},
			expected: 2,
		},
		{
			name:     "author only",
			signals:  Signals{HasAuthor: true},
			expected: 1,
		},
		{
			name:     "age match only",
			signals:  Signals{AgeMatch: true},
			expected: 3,
		},
		{
			name: "everything",
			signals: Signals{
				TitleMatches:   2,
				SubjectMatches: 1,
				AgeMatch:       true,
				HasCover:       true,
				HasAuthor:      true,
			},
			expected: 8 + 2 + 3 + 2 + 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompositeScore(tt.signals, DefaultWeights()); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

// TestCompositeScore_NilWeights tests that nil weights fall back to defaults.
func TestCompositeScore_NilWeights(t *testing.T) {
	s := Signals{TitleMatches: 1, SubjectMatches: 1, HasCover: true, HasAuthor: true}

	withNil := CompositeScore(s, nil)
	withDefaults := CompositeScore(s, DefaultWeights())

	if withNil != withDefaults {
		t.Errorf("nil weights should equal defaults: %d vs %d", withNil, withDefaults)
	}
	if withNil != 9 {
		t.Errorf("expected 9, got %d", withNil)
	}
}

// TestCompositeScore_CustomWeights tests that calibrated weights are applied.
func TestCompositeScore_CustomWeights(t *testing.T) {
	weights := &Weights{TitleMatch: 10, SubjectMatch: 1, AgeMatch: 5, Cover: 0, Author: 0}
	s := Signals{TitleMatches: 1, SubjectMatches: 3, AgeMatch: true, HasCover: true, HasAuthor: true}

	if got := CompositeScore(s, weights); got != 18 {
		t.Errorf("expected 18, got %d", got)
	}
}

// TestAgeBonus tests the age component.
func TestAgeBonus(t *testing.T) {
	if got := AgeBonus(false, nil); got != 0 {
		t.Errorf("expected 0 when unmatched, got %d", got)
	}
	if got := AgeBonus(true, nil); got != 3 {
		t.Errorf("expected 3 when matched, got %d", got)
	}
}

// BenchmarkCompositeScore benchmarks the composite score calculation.
func BenchmarkCompositeScore(b *testing.B) {
	weights := DefaultWeights()
	s := Signals{TitleMatches: 2, SubjectMatches: 1, AgeMatch: true, HasCover: true, HasAuthor: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CompositeScore(s, weights)
	}
}

// BenchmarkInterestMatches benchmarks interest matching over a typical record.
func BenchmarkInterestMatches(b *testing.B) {
	tokens := []string{"tech", "cooking", "travel"}
	title := "the food lab: better home cooking through science"
	subjects := "cooking, science, food, american cooking, technique"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		InterestMatches(title, subjects, tokens)
	}
}
