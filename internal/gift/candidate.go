package gift

import "strconv"

// Derived URL formats.
const (
	coverURLPrefix   = "https://covers.openlibrary.org/b/id/"
	coverURLSuffix   = "-M.jpg"
	catalogURLPrefix = "https://openlibrary.org"

	// UnknownAuthor is shown when a candidate names no author.
	UnknownAuthor = "Unknown author"

	// MaxSubjects caps the subjects carried on a RankedGift.
	MaxSubjects = 6
)

// CandidateRecord is one catalog search hit before ranking. Any field may be
// absent; absence is the zero value.
type CandidateRecord struct {
	Key              string   `json:"key,omitempty"`
	Title            string   `json:"title,omitempty"`
	AuthorNames      []string `json:"authorNames,omitempty"`
	FirstPublishYear int      `json:"firstPublishYear,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	CoverID          int64    `json:"coverId,omitempty"`
}

// RankedGift is a candidate shaped for display. Nil pointers encode as null.
type RankedGift struct {
	Key        string   `json:"key,omitempty"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Year       *int     `json:"year"`
	Subjects   []string `json:"subjects"`
	CoverURL   *string  `json:"coverUrl"`
	CatalogURL *string  `json:"catalogUrl"`
}

// CoverURL returns the medium cover image URL for a cover id.
func CoverURL(coverID int64) string {
	return coverURLPrefix + strconv.FormatInt(coverID, 10) + coverURLSuffix
}

// CatalogURL returns the catalog detail page for a record key. The key is
// expected to start with "/".
func CatalogURL(key string) string {
	return catalogURLPrefix + key
}

// shape maps a candidate to its display form.
func shape(c CandidateRecord) RankedGift {
	g := RankedGift{
		Key:      c.Key,
		Title:    c.Title,
		Author:   UnknownAuthor,
		Subjects: make([]string, 0, min(len(c.Subjects), MaxSubjects)),
	}
	if len(c.AuthorNames) > 0 && c.AuthorNames[0] != "" {
		g.Author = c.AuthorNames[0]
	}
	if c.FirstPublishYear != 0 {
		year := c.FirstPublishYear
		g.Year = &year
	}
	g.Subjects = append(g.Subjects, head(c.Subjects, MaxSubjects)...)
	if c.CoverID != 0 {
		u := CoverURL(c.CoverID)
		g.CoverURL = &u
	}
	if c.Key != "" {
		u := CatalogURL(c.Key)
		g.CatalogURL = &u
	}
	return g
}
