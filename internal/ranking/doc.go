// Package ranking provides the integer relevance components used to order
// gift candidates, with calibration support for the per-signal weights.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	// Count interest hits for one candidate
//	titleHits, subjectHits := ranking.InterestMatches(title, subjects, tokens)
//
//	score := ranking.CompositeScore(ranking.Signals{
//		TitleMatches:   titleHits,
//		SubjectMatches: subjectHits,
//		AgeMatch:       ageMatched,
//		HasCover:       coverID != 0,
//		HasAuthor:      len(authors) > 0,
//	}, weights)
//
// Calibration:
//
// Weights are loaded from a JSON file at startup and merged over the defaults,
// so a file only needs to name the weights it changes. A missing or broken file
// never prevents startup; the defaults are used instead. The defaults reproduce
// the reference scoring exactly: +4 per title hit, +2 per subject hit, +3 for an
// age-appropriate subject, +2 for a cover image and +1 for a known author.
package ranking
