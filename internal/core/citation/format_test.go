// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package citation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroto333/references/internal/core/citation"
)

/*
TestFormat_ResearchReport checks the full research-report template.
*/
func TestFormat_ResearchReport(t *testing.T) {
	record := citation.ResearchReport{
		Authors:   "山田太郎, 佐藤次郎",
		Title:     "分散システムにおける合意形成",
		Publisher: "情報処理学会研究報告",
		Volume:    "59",
		Number:    "3",
		Pages:     "10-20",
		Year:      "2024",
	}

	got, err := citation.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "山田太郎，佐藤次郎：分散システムにおける合意形成，情報処理学会研究報告，59, 3, 10-20 (2024)．", got)
}

/*
TestFormat_Journal checks the journal template, including the reference
scenario with mixed-width author input.
*/
func TestFormat_Journal(t *testing.T) {
	record := citation.Journal{
		Authors:   "山田太郎, 佐藤次郎",
		Title:     "T",
		Publisher: "P",
		Volume:    "59",
		Number:    "3",
		Pages:     "10-20",
		Year:      "2024",
	}

	got, err := citation.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "山田太郎，佐藤次郎：T，P，59, 3, 10-20(2024)．", got)
}

/*
TestFormat_JournalVsResearchReport pins the single-character difference
between the two academic styles: the space before the year parenthesis.
*/
func TestFormat_JournalVsResearchReport(t *testing.T) {
	journal := citation.Journal{
		Authors: "A", Title: "T", Publisher: "P",
		Volume: "1", Number: "2", Pages: "3-4", Year: "2024",
	}
	report := citation.ResearchReport{
		Authors: "A", Title: "T", Publisher: "P",
		Volume: "1", Number: "2", Pages: "3-4", Year: "2024",
	}

	journalText, err := citation.Format(journal)
	require.NoError(t, err)
	reportText, err := citation.Format(report)
	require.NoError(t, err)

	assert.Equal(t, "A：T，P，1, 2, 3-4(2024)．", journalText)
	assert.Equal(t, "A：T，P，1, 2, 3-4 (2024)．", reportText)

	// Removing the one space from the report form yields the journal form.
	assert.Equal(t, journalText, reportText[:len(reportText)-len(" (2024)．")]+"(2024)．")
}

/*
TestFormat_Book verifies that only publisher and year shape the trailing
segment.
*/
func TestFormat_Book(t *testing.T) {
	record := citation.Book{
		Authors:   "結城浩",
		Title:     "数学ガール",
		Publisher: "ソフトバンククリエイティブ",
		Year:      "2007",
	}

	got, err := citation.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "結城浩：数学ガール，ソフトバンククリエイティブ (2007)．", got)
}

/*
TestFormat_Book_IgnoresForeignFields checks that journal-only fields present
in the flat wire shape do not leak into a book citation.
*/
func TestFormat_Book_IgnoresForeignFields(t *testing.T) {
	record, err := citation.FromFields(string(citation.TypeBook), citation.Fields{
		Authors:       "結城浩",
		Title:         "数学ガール",
		BookPublisher: "ソフトバンククリエイティブ",
		Year:          "2007",
		// Fields from other categories, deliberately populated.
		Publisher: "X",
		Volume:    "9",
		Number:    "9",
		Pages:     "1-2",
		URL:       "https://example.com",
	})
	require.NoError(t, err)

	got, err := citation.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "結城浩：数学ガール，ソフトバンククリエイティブ (2007)．", got)
}

/*
TestFormat_WebPage checks the URL template and access-date rendering.
*/
func TestFormat_WebPage(t *testing.T) {
	record := citation.WebPage{
		Authors:    "総務省",
		Title:      "情報通信白書",
		URL:        "https://www.soumu.go.jp/johotsusintokei/whitepaper/",
		AccessDate: "2024-03-05T00:00:00",
	}

	got, err := citation.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "総務省：情報通信白書，入手先 \"https://www.soumu.go.jp/johotsusintokei/whitepaper/\" (2024.03.05 確認)．", got)
}

/*
TestFormat_WebPage_EmptyAccessDate renders an empty date segment rather than
failing when no access date was supplied.
*/
func TestFormat_WebPage_EmptyAccessDate(t *testing.T) {
	record := citation.WebPage{
		Authors: "A",
		Title:   "T",
		URL:     "https://example.com",
	}

	got, err := citation.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "A：T，入手先 \"https://example.com\" ( 確認)．", got)
}

/*
TestFormat_WebPage_InvalidAccessDate rejects unparseable non-empty dates.
*/
func TestFormat_WebPage_InvalidAccessDate(t *testing.T) {
	record := citation.WebPage{
		Authors:    "A",
		Title:      "T",
		URL:        "https://example.com",
		AccessDate: "2024/03/05",
	}

	_, err := citation.Format(record)
	assert.Error(t, err)
}

/*
TestFormat_Idempotent verifies that formatting is a pure function.
*/
func TestFormat_Idempotent(t *testing.T) {
	record := citation.Journal{
		Authors: "山田太郎, 佐藤次郎", Title: "T", Publisher: "P",
		Volume: "59", Number: "3", Pages: "10-20", Year: "2024",
	}

	first, err := citation.Format(record)
	require.NoError(t, err)
	second, err := citation.Format(record)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

/*
TestJoinAuthors covers the author-list transform, including the preserved
empty-segment behaviour.
*/
func TestJoinAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors string
		want    string
	}{
		{"two_authors_ascii_space", "山田太郎, 佐藤次郎", "山田太郎，佐藤次郎"},
		{"single_author", "山田太郎", "山田太郎"},
		{"untrimmed", "  A ,B  , C", "A，B，C"},
		{"empty_middle_segment_preserved", "A,,B", "A，，B"},
		{"trailing_comma_preserved", "A,", "A，"},
		{"empty_input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, citation.JoinAuthors(tt.authors))
		})
	}
}

/*
TestFormatAccessDate covers the YYYY.MM.DD transform with zero padding.
*/
func TestFormatAccessDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"date_time", "2024-03-05T00:00:00", "2024.03.05"},
		{"date_only", "2024-03-05", "2024.03.05"},
		{"single_digit_padding", "2024-01-09", "2024.01.09"},
		{"end_of_year", "2023-12-31", "2023.12.31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := citation.FormatAccessDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := citation.FormatAccessDate("not-a-date")
		assert.Error(t, err)
	})
}

/*
TestFromFields_UnsupportedType verifies the typed error for unknown labels.
*/
func TestFromFields_UnsupportedType(t *testing.T) {
	_, err := citation.FromFields("雑誌", citation.Fields{Authors: "A", Title: "T"})
	assert.ErrorIs(t, err, citation.ErrUnsupportedType)

	_, err = citation.FromFields("", citation.Fields{})
	assert.ErrorIs(t, err, citation.ErrUnsupportedType)
}

/*
TestRenderCopyBlocks checks the numbered export layout.
*/
func TestRenderCopyBlocks(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", citation.RenderCopyBlocks(nil))
		assert.Equal(t, "", citation.RenderCopyBlocks([]string{}))
	})

	t.Run("single", func(t *testing.T) {
		assert.Equal(t, "[1] A：T，P (2024)．", citation.RenderCopyBlocks([]string{"A：T，P (2024)．"}))
	})

	t.Run("multiple", func(t *testing.T) {
		got := citation.RenderCopyBlocks([]string{"first", "second", "third"})
		assert.Equal(t, "[1] first\n\n[2] second\n\n[3] third", got)
	})
}
