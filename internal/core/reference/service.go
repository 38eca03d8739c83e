// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

/*
Package reference implements the persisted citation library.

It handles everything from rendering a bibliographic entry into its
publication-ready Japanese string to owning the per-user stored list that
backs the clipboard export flow.

Architecture:

  - Service: Orchestrates business logic (Save, List, Delete, Export).
  - Repository: Abstracted interface over Postgres storage.
  - Rendering: Delegated to the citation package, which owns the templates.

Formatted text is rendered once at save time and persisted alongside the raw
fields, so exports never re-render and historical entries keep the exact
string the user saw when saving.
*/
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/hiroto333/references/internal/core/citation"
	"github.com/hiroto333/references/internal/platform/apperr"
	"github.com/hiroto333/references/internal/platform/metrics"
	"github.com/hiroto333/references/pkg/jptext"
	"github.com/hiroto333/references/pkg/uuid"
)

// Service implements reference library use cases.
type Service struct {
	repository Repository
	metrics    *metrics.Metrics
}

// NewService constructs a new reference [Service] with necessary dependencies.
func NewService(repository Repository, metrics *metrics.Metrics) *Service {
	return &Service{
		repository: repository,
		metrics:    metrics,
	}
}

// # Save Flow

// SaveInput holds the raw form fields for a citation to persist.
//
// Every field arrives as a string straight off the wire; which ones are
// meaningful depends on Type. Fields irrelevant to the chosen type are
// dropped before rendering and never stored.
type SaveInput struct {
	Type          string
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

/*
Save renders and persists a new citation for the owner.

Description: Normalizes the raw fields to NFC, renders the formatted string
through the citation templates, and deep-persists both the raw fields and the
rendered text as one row.

Parameters:
  - context: context.Context
  - ownerID: string
  - input: SaveInput

Returns:
  - *StoredReference: Persisted entity including the rendered text
  - error: Unprocessable (unsupported type or bad access date) or storage errors
*/
func (service *Service) Save(context context.Context, ownerID string, input SaveInput) (*StoredReference, error) {

	record, err := recordFromInput(input)
	if err != nil {
		return nil, err
	}

	formatted, err := citation.Format(record)
	if err != nil {
		// Only a malformed access date can fail here; the type was already
		// resolved. Client-safe message, original error stays server-side.
		return nil, apperr.Unprocessable("Access date could not be parsed")
	}

	// Time-sortable ID to prevent PG index fragmentation.
	stored := &StoredReference{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Type:          string(record.Type()),
		Authors:       jptext.Clean(input.Authors),
		Title:         jptext.Clean(input.Title),
		FormattedText: formatted,
	}
	applyTypedFields(stored, record)

	if err := service.repository.Insert(context, stored); err != nil {
		return nil, fmt.Errorf("reference_service_save_failed: %w", err)
	}

	service.metrics.ReferencesSaved.Inc()

	return stored, nil
}

/*
Format renders a citation without persisting anything.

Description: Backs the live preview, where the user sees the publication
string update as they type. No owner is involved and nothing is stored.

Parameters:
  - context: context.Context
  - input: SaveInput

Returns:
  - string: Rendered citation text
  - error: Unprocessable (unsupported type or bad access date)
*/
func (service *Service) Format(_ context.Context, input SaveInput) (string, error) {

	record, err := recordFromInput(input)
	if err != nil {
		return "", err
	}

	formatted, err := citation.Format(record)
	if err != nil {
		return "", apperr.Unprocessable("Access date could not be parsed")
	}

	return formatted, nil
}

// # Library Queries

/*
List returns the owner's full reference library, newest first.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - []*StoredReference: Rows ordered by creation time descending
  - error: Storage errors
*/
func (service *Service) List(context context.Context, ownerID string) ([]*StoredReference, error) {
	references, err := service.repository.ListByOwner(context, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reference_service_list_failed: %w", err)
	}
	return references, nil
}

/*
Delete removes a single reference owned by the principal.

Parameters:
  - context: context.Context
  - ownerID: string
  - id: string

Returns:
  - error: NotFound (unknown or foreign-owned id) or storage errors
*/
func (service *Service) Delete(context context.Context, ownerID, id string) error {
	if err := service.repository.DeleteByID(context, ownerID, id); err != nil {
		return err
	}
	service.metrics.ReferencesDeleted.Inc()
	return nil
}

/*
PurgeOwner removes every reference owned by the principal.

Description: Cascade hook for ephemeral-account teardown. Safe to call for an
owner with no rows.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - error: Storage errors
*/
func (service *Service) PurgeOwner(context context.Context, ownerID string) error {
	deleted, err := service.repository.DeleteAllByOwner(context, ownerID)
	if err != nil {
		return fmt.Errorf("reference_service_purge_failed: %w", err)
	}
	if deleted > 0 {
		service.metrics.ReferencesDeleted.Add(float64(deleted))
	}
	return nil
}

// # Export Flow

// ExportResult carries the clipboard payload for a selection export.
type ExportResult struct {
	Text  string
	Count int
}

/*
Export assembles the numbered clipboard text for a selection of references.

Description: Preserves the library's newest-first ordering regardless of the
order ids arrive in, numbers each entry from [1], and separates entries with a
blank line. Unknown or foreign-owned ids are silently skipped, mirroring a
selection that raced with a delete.

Parameters:
  - context: context.Context
  - ownerID: string
  - ids: []string

Returns:
  - *ExportResult: Clipboard text and the number of entries included
  - error: Storage errors
*/
func (service *Service) Export(context context.Context, ownerID string, ids []string) (*ExportResult, error) {

	references, err := service.repository.ListByOwner(context, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reference_service_export_list_failed: %w", err)
	}

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	// Walk the stored order, not the request order.
	lines := make([]string, 0, len(ids))
	for _, ref := range references {
		if selected[ref.ID] {
			lines = append(lines, ref.FormattedText)
		}
	}

	result := &ExportResult{
		Text:  citation.RenderCopyBlocks(lines),
		Count: len(lines),
	}

	if result.Count > 0 {
		service.metrics.ReferencesExported.Add(float64(result.Count))
	}

	return result, nil
}

// # Rendering Helpers

// recordFromInput normalizes the raw wire fields and resolves them into a
// typed citation record.
func recordFromInput(input SaveInput) (citation.Record, error) {
	fields := citation.Fields{
		Authors:       jptext.Clean(input.Authors),
		Title:         jptext.Clean(input.Title),
		Publisher:     jptext.Clean(input.Publisher),
		Volume:        jptext.Clean(input.Volume),
		Number:        jptext.Clean(input.Number),
		Pages:         jptext.Clean(input.Pages),
		Year:          jptext.Clean(input.Year),
		BookPublisher: jptext.Clean(input.BookPublisher),
		URL:           jptext.Clean(input.URL),
		AccessDate:    jptext.Clean(input.AccessDate),
	}
	record, err := citation.FromFields(input.Type, fields)
	if err != nil {
		if errors.Is(err, citation.ErrUnsupportedType) {
			return nil, apperr.Unprocessable("Unsupported reference type")
		}
		return nil, err
	}
	return record, nil
}

// applyTypedFields copies only the fields the resolved record actually uses
// onto the stored row, leaving the rest NULL.
func applyTypedFields(stored *StoredReference, record citation.Record) {
	switch r := record.(type) {
	case citation.ResearchReport:
		stored.Publisher = optional(r.Publisher)
		stored.Volume = optional(r.Volume)
		stored.Number = optional(r.Number)
		stored.Pages = optional(r.Pages)
		stored.Year = optional(r.Year)
	case citation.Journal:
		stored.Publisher = optional(r.Publisher)
		stored.Volume = optional(r.Volume)
		stored.Number = optional(r.Number)
		stored.Pages = optional(r.Pages)
		stored.Year = optional(r.Year)
	case citation.Book:
		stored.BookPublisher = optional(r.Publisher)
		stored.Year = optional(r.Year)
	case citation.WebPage:
		stored.URL = optional(r.URL)
		stored.AccessDate = optional(r.AccessDate)
	}
}

// optional returns nil for an empty string so the column stores NULL.
func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
