// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

/*
Package reference manages the per-user citation list.

It handles the lifecycle of saved references: formatting at save time,
owner-scoped listing and deletion, the numbered copy-block export, and the
cascade purge backing guest-session cleanup.

# Core Responsibility

  - StoredReference: A persisted citation row, owned by exactly one principal.
  - Repository: Owner-scoped data access contract over PostgreSQL.
  - Service: Orchestrates formatting, persistence, and export.

The formatted text is computed exactly once when a reference is saved and is
immutable afterwards; no edit operation exists.
*/
package reference

import "time"

// # Domain Entity

// StoredReference is one saved citation.
//
// Conditional fields are pointers: a nil value means the field does not
// belong to the reference's category. The formatter never reads fields of a
// foreign category, so their presence is not validated here.
type StoredReference struct {
	ID      string `json:"id"`
	OwnerID string `json:"user_id"`

	// Type holds the category label (研究報告, 論文誌, 書籍, URL).
	Type    string `json:"type"`
	Authors string `json:"authors"`
	Title   string `json:"title"`

	Publisher     *string `json:"publisher,omitempty"`
	Volume        *string `json:"volume,omitempty"`
	Number        *string `json:"number,omitempty"`
	Pages         *string `json:"pages,omitempty"`
	Year          *string `json:"year,omitempty"`
	BookPublisher *string `json:"book_publisher,omitempty"`
	URL           *string `json:"url,omitempty"`
	AccessDate    *string `json:"access_date,omitempty"`

	// FormattedText is rendered once at save time and stored verbatim.
	FormattedText string `json:"formatted_text"`

	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and JSON mapping in the reference domain.
const (
	FieldType          = "type"
	FieldAuthors       = "authors"
	FieldTitle         = "title"
	FieldPublisher     = "publisher"
	FieldVolume        = "volume"
	FieldNumber        = "number"
	FieldPages         = "pages"
	FieldYear          = "year"
	FieldBookPublisher = "book_publisher"
	FieldURL           = "url"
	FieldAccessDate    = "access_date"
	FieldIDs           = "ids"
	FieldFormattedText = "formatted_text"
	FieldUserID        = "userId"
)
