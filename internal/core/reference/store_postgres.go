// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

// PostgreSQL implementation of the reference [Repository].
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiroto333/references/internal/platform/apperr"
)

// # Reference Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Insert persists a new reference row into the core.reference table.

Description: Deep-persists the citation including its pre-rendered formatted
text, initializing the creation timestamp if not provided.

Parameters:
  - context: context.Context
  - ref: *StoredReference (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Insert(context context.Context, ref *StoredReference) error {
	const query = `
		INSERT INTO core.reference (
			id, ownerid, reftype, authors, title,
			publisher, volume, number, pages, year,
			bookpublisher, url, accessdate, formattedtext, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		ref.ID,
		ref.OwnerID,
		ref.Type,
		ref.Authors,
		ref.Title,
		ref.Publisher,
		ref.Volume,
		ref.Number,
		ref.Pages,
		ref.Year,
		ref.BookPublisher,
		ref.URL,
		ref.AccessDate,
		ref.FormattedText,
		ref.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_reference_repo_insert_failed: %w", err)
	}

	return nil
}

/*
ListByOwner retrieves all references owned by the principal.

Description: Owner-filtered scan ordered by creation time descending, so the
most recently saved citation appears first.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - []*StoredReference: Hydrated rows; empty slice when the owner has none
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListByOwner(context context.Context, ownerID string) ([]*StoredReference, error) {
	const query = `
		SELECT id, ownerid, reftype, authors, title,
		       publisher, volume, number, pages, year,
		       bookpublisher, url, accessdate, formattedtext, createdat
		FROM core.reference
		WHERE ownerid = $1
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(context, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("postgres_reference_repo_list_failed: %w", err)
	}
	defer rows.Close()

	references := make([]*StoredReference, 0)
	for rows.Next() {
		ref := &StoredReference{}
		err := rows.Scan(
			&ref.ID,
			&ref.OwnerID,
			&ref.Type,
			&ref.Authors,
			&ref.Title,
			&ref.Publisher,
			&ref.Volume,
			&ref.Number,
			&ref.Pages,
			&ref.Year,
			&ref.BookPublisher,
			&ref.URL,
			&ref.AccessDate,
			&ref.FormattedText,
			&ref.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_reference_repo_scan_failed: %w", err)
		}
		references = append(references, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_reference_repo_rows_failed: %w", err)
	}

	return references, nil
}

/*
DeleteByID removes a single owned reference.

Description: The DELETE is owner-scoped, so a foreign-owned id can never be
removed regardless of what the caller sends. A zero affected-row count is
surfaced as NotFound rather than silently succeeding.

Parameters:
  - context: context.Context
  - ownerID: string
  - id: string

Returns:
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) DeleteByID(context context.Context, ownerID, id string) error {
	const query = "DELETE FROM core.reference WHERE id = $1 AND ownerid = $2"

	tag, err := repository.pool.Exec(context, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("postgres_reference_repo_delete_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Reference")
	}

	return nil
}

/*
DeleteAllByOwner removes every reference owned by the principal.

Description: Cascade purge for ephemeral-session teardown. Deleting an owner
with no rows is a successful no-op, which keeps the operation idempotent
under duplicate beacon deliveries.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - int64: Rows removed by this invocation
  - error: Execution errors
*/
func (repository *PostgresRepository) DeleteAllByOwner(context context.Context, ownerID string) (int64, error) {
	const query = "DELETE FROM core.reference WHERE ownerid = $1"

	tag, err := repository.pool.Exec(context, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("postgres_reference_repo_delete_all_failed: %w", err)
	}

	return tag.RowsAffected(), nil
}
