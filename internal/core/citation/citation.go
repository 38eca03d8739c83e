// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

/*
Package citation renders bibliographic records into the institutional
citation style.

It handles the four supported reference categories and their type-dependent
field sets, locale-specific punctuation (full-width comma and colon, closing
"．"), and access-date formatting for web citations.

# Core Responsibility

  - Record: One tagged variant per reference category, carrying exactly the
    fields that category requires.
  - Format: Pure mapping from a record to its canonical citation string.
  - RenderCopyBlocks: The numbered clipboard/export block layout.

Formatting runs once at save time; the resulting string is stored verbatim and
never recomputed.
*/
package citation

// # Reference Categories

// Type identifies a reference category. The constants are the Japanese wire
// labels stored in the database and exchanged with clients; they double as
// the user-facing form vocabulary.
type Type string

const (
	TypeResearchReport Type = "研究報告"
	TypeJournal        Type = "論文誌"
	TypeBook           Type = "書籍"
	TypeURL            Type = "URL"
)

// Types lists every supported category label, for validation at the HTTP
// boundary.
func Types() []string {
	return []string{
		string(TypeResearchReport),
		string(TypeJournal),
		string(TypeBook),
		string(TypeURL),
	}
}

// # Record Variants

// Record is the closed union of citation inputs. Each variant carries exactly
// the fields its category requires, so an invalid field/type combination is
// unrepresentable.
type Record interface {
	Type() Type

	// record restricts implementations to this package.
	record()
}

// ResearchReport is a technical/research report citation
// (authors, title, publisher, volume, number, pages, year).
type ResearchReport struct {
	Authors   string // comma-separated, order-preserving
	Title     string
	Publisher string
	Volume    string
	Number    string
	Pages     string
	Year      string
}

func (ResearchReport) Type() Type { return TypeResearchReport }
func (ResearchReport) record()    {}

// Journal is a journal-article citation. Same field set as [ResearchReport];
// the rendered form differs by one punctuation rule (no space before the
// year parenthesis).
type Journal struct {
	Authors   string
	Title     string
	Publisher string
	Volume    string
	Number    string
	Pages     string
	Year      string
}

func (Journal) Type() Type { return TypeJournal }
func (Journal) record()    {}

// Book is a monograph citation (authors, title, publisher, year).
type Book struct {
	Authors   string
	Title     string
	Publisher string
	Year      string
}

func (Book) Type() Type { return TypeBook }
func (Book) record()    {}

// WebPage is an online-source citation (authors, title, URL, access date).
type WebPage struct {
	Authors    string
	Title      string
	URL        string
	AccessDate string // ISO-8601; empty renders an empty date segment
}

func (WebPage) Type() Type { return TypeURL }
func (WebPage) record()    {}

// # Flat Input Mapping

// Fields is the flat, optional-field shape in which records arrive over the
// wire. FromFields maps it onto the tagged union; fields that do not belong
// to the requested category are ignored, not rejected.
type Fields struct {
	Authors       string
	Title         string
	Publisher     string
	Volume        string
	Number        string
	Pages         string
	Year          string
	BookPublisher string
	URL           string
	AccessDate    string
}

// FromFields builds the [Record] variant for the given category label.
// Unknown labels yield [ErrUnsupportedType].
func FromFields(typeLabel string, f Fields) (Record, error) {
	switch Type(typeLabel) {
	case TypeResearchReport:
		return ResearchReport{
			Authors:   f.Authors,
			Title:     f.Title,
			Publisher: f.Publisher,
			Volume:    f.Volume,
			Number:    f.Number,
			Pages:     f.Pages,
			Year:      f.Year,
		}, nil
	case TypeJournal:
		return Journal{
			Authors:   f.Authors,
			Title:     f.Title,
			Publisher: f.Publisher,
			Volume:    f.Volume,
			Number:    f.Number,
			Pages:     f.Pages,
			Year:      f.Year,
		}, nil
	case TypeBook:
		return Book{
			Authors:   f.Authors,
			Title:     f.Title,
			Publisher: f.BookPublisher,
			Year:      f.Year,
		}, nil
	case TypeURL:
		return WebPage{
			Authors:    f.Authors,
			Title:      f.Title,
			URL:        f.URL,
			AccessDate: f.AccessDate,
		}, nil
	}
	return nil, ErrUnsupportedType
}
