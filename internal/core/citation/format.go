// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package citation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnsupportedType reports a reference category the formatter does not
// recognize. A typed sentinel rather than a fallback string, so callers can
// never mistake an error for a rendered citation.
var ErrUnsupportedType = errors.New("citation: unsupported reference type")

// fullWidthComma separates authors in the rendered citation (U+FF0C).
const fullWidthComma = "，"

// # Formatting

// Format renders a record into its canonical citation string.
//
// It is total and side-effect-free: the same record always yields the same
// string. It fails only on a nil record or an unparseable non-empty access
// date; the union is sealed, so every variant has a template.
//
// Style rules by category:
//
//	研究報告: {authors}：{title}，{publisher}，{volume}, {number}, {pages} ({year})．
//	論文誌:   {authors}：{title}，{publisher}，{volume}, {number}, {pages}({year})．
//	書籍:     {authors}：{title}，{publisher} ({year})．
//	URL:      {authors}：{title}，入手先 "{url}" ({accessDate} 確認)．
//
// The missing space before "({year})" in the journal form is deliberate; it
// is the one character distinguishing the two academic styles.
func Format(record Record) (string, error) {
	switch r := record.(type) {
	case ResearchReport:
		return fmt.Sprintf("%s：%s，%s，%s, %s, %s (%s)．",
			JoinAuthors(r.Authors), r.Title, r.Publisher, r.Volume, r.Number, r.Pages, r.Year), nil

	case Journal:
		return fmt.Sprintf("%s：%s，%s，%s, %s, %s(%s)．",
			JoinAuthors(r.Authors), r.Title, r.Publisher, r.Volume, r.Number, r.Pages, r.Year), nil

	case Book:
		return fmt.Sprintf("%s：%s，%s (%s)．",
			JoinAuthors(r.Authors), r.Title, r.Publisher, r.Year), nil

	case WebPage:
		accessed := ""
		if r.AccessDate != "" {
			formatted, err := FormatAccessDate(r.AccessDate)
			if err != nil {
				return "", err
			}
			accessed = formatted
		}
		return fmt.Sprintf("%s：%s，入手先 \"%s\" (%s 確認)．",
			JoinAuthors(r.Authors), r.Title, r.URL, accessed), nil
	}

	return "", ErrUnsupportedType
}

// JoinAuthors splits a comma-separated author list, trims each segment, and
// rejoins with the full-width comma.
//
// Empty segments (e.g. "A,,B" or a trailing comma) are preserved, not
// filtered — the stored citation mirrors exactly what the user typed.
func JoinAuthors(authors string) string {
	segments := strings.Split(authors, ",")
	for i, segment := range segments {
		segments[i] = strings.TrimSpace(segment)
	}
	return strings.Join(segments, fullWidthComma)
}

// accessDateLayouts are tried in order when parsing an access date.
// Offset-less layouts are interpreted in local time; an explicit offset is
// converted to local before the calendar fields are extracted.
var accessDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatAccessDate converts an ISO-8601 date string to the "YYYY.MM.DD"
// segment used in URL citations, with zero-padded month and day.
func FormatAccessDate(isoDate string) (string, error) {
	for _, layout := range accessDateLayouts {
		parsed, err := time.ParseInLocation(layout, isoDate, time.Local)
		if err == nil {
			return parsed.In(time.Local).Format("2006.01.02"), nil
		}
	}
	return "", fmt.Errorf("citation: invalid access date %q", isoDate)
}

// # Clipboard / Export Layout

// RenderCopyBlocks lays out formatted citations as numbered blocks,
//
//	[1] first citation
//
//	[2] second citation
//
// joined by a blank line. Numbering is 1-based in the order given. An empty
// input renders the empty string.
func RenderCopyBlocks(formattedTexts []string) string {
	if len(formattedTexts) == 0 {
		return ""
	}

	blocks := make([]string, len(formattedTexts))
	for i, text := range formattedTexts {
		blocks[i] = fmt.Sprintf("[%d] %s", i+1, text)
	}
	return strings.Join(blocks, "\n\n")
}
