// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package reference

import "context"

// # Reference Data Access

// Repository defines the owner-scoped data access contract for saved
// references. Every operation filters by owner; no call can read or mutate
// another principal's rows.
type Repository interface {

	/*
		Insert persists a new reference row.

		Parameters:
		  - context: context.Context
		  - ref: *StoredReference (ID and CreatedAt already assigned)

		Returns:
		  - error: Database constraint violations or connectivity errors
	*/
	Insert(context context.Context, ref *StoredReference) error

	/*
		ListByOwner retrieves every reference owned by the principal,
		most recent first.

		Parameters:
		  - context: context.Context
		  - ownerID: string

		Returns:
		  - []*StoredReference: Rows ordered by createdat DESC; empty slice if none
		  - error: Database retrieval failures
	*/
	ListByOwner(context context.Context, ownerID string) ([]*StoredReference, error)

	/*
		DeleteByID removes a single reference, but only when the row's owner
		matches ownerID.

		Parameters:
		  - context: context.Context
		  - ownerID: string
		  - id: string

		Returns:
		  - error: apperr.NotFound when no owned row matched, or execution errors
	*/
	DeleteByID(context context.Context, ownerID, id string) error

	/*
		DeleteAllByOwner removes every reference owned by the principal.

		Idempotent: invoking it zero, one, or many times converges to the
		same state (no owned rows).

		Parameters:
		  - context: context.Context
		  - ownerID: string

		Returns:
		  - int64: Number of rows removed by this invocation
		  - error: Execution errors
	*/
	DeleteAllByOwner(context context.Context, ownerID string) (int64, error)
}
