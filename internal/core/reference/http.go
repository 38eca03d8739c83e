// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

/*
HTTP delivery layer for the reference library.

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Verification: Enforces type-dependent input validation before passing
    to [Service].
  - Security: Ownership comes exclusively from the verified JWT claims,
    never from the payload.

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/
package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hiroto333/references/internal/core/citation"
	"github.com/hiroto333/references/internal/platform/middleware"
	requestutil "github.com/hiroto333/references/internal/platform/request"
	"github.com/hiroto333/references/internal/platform/respond"
	"github.com/hiroto333/references/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements reference-library HTTP endpoints.
type Handler struct {
	referenceService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{referenceService: service}
}

// Routes returns a [chi.Router] configured with reference-library routes.
//
// # Endpoints
//   - POST /format : Renders a citation preview (public).
//   - POST /       : Saves a citation to the caller's library.
//   - GET  /       : Lists the caller's library, newest first.
//   - DELETE /{id} : Removes a single owned citation.
//   - POST /export : Assembles the numbered clipboard text for a selection.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public: the preview needs no account.
	router.Post("/format", handler.format)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.save)
		r.Get("/", handler.list)
		r.Delete("/{id}", handler.remove)
		r.Post("/export", handler.export)
	})

	return router
}

// # Request Payloads

type citationRequest struct {
	Type          string `json:"type"`
	Authors       string `json:"authors"`
	Title         string `json:"title"`
	Publisher     string `json:"publisher"`
	Volume        string `json:"volume"`
	Number        string `json:"number"`
	Pages         string `json:"pages"`
	Year          string `json:"year"`
	BookPublisher string `json:"book_publisher"`
	URL           string `json:"url"`
	AccessDate    string `json:"access_date"`
}

type exportRequest struct {
	IDs []string `json:"ids"`
}

// validateCitation applies the shared field rules plus the type-dependent
// requirements. Only fields the chosen category renders are validated;
// leftovers from switching the form type are ignored.
func validateCitation(input citationRequest) error {
	validator := &validate.Validator{}
	validator.Required(FieldType, input.Type).
		OneOf(FieldType, input.Type, citation.Types()...).
		Required(FieldAuthors, input.Authors).
		MaxLen(FieldAuthors, input.Authors, 512).
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 512)

	switch citation.Type(input.Type) {
	case citation.TypeResearchReport, citation.TypeJournal:
		validator.Required(FieldPublisher, input.Publisher).
			Required(FieldVolume, input.Volume).
			Required(FieldNumber, input.Number).
			Required(FieldPages, input.Pages).
			Required(FieldYear, input.Year)
	case citation.TypeBook:
		validator.Required(FieldBookPublisher, input.BookPublisher).
			Required(FieldYear, input.Year)
	case citation.TypeURL:
		validator.Required(FieldURL, input.URL).
			URL(FieldURL, input.URL)
		// The access date is optional; when omitted the rendered citation
		// carries an empty date segment.
		if input.AccessDate != "" {
			validator.ISODate(FieldAccessDate, input.AccessDate)
		}
	}

	return validator.Err()
}

// saveInput maps the wire payload onto the service input.
func saveInput(input citationRequest) SaveInput {
	return SaveInput{
		Type:          input.Type,
		Authors:       input.Authors,
		Title:         input.Title,
		Publisher:     input.Publisher,
		Volume:        input.Volume,
		Number:        input.Number,
		Pages:         input.Pages,
		Year:          input.Year,
		BookPublisher: input.BookPublisher,
		URL:           input.URL,
		AccessDate:    input.AccessDate,
	}
}

/*
Format renders a citation preview without persisting it.

POST /api/v1/references/format

Description: Validates the type-dependent fields and returns the rendered
publication string. Public, so the form preview works before login.

Request:
  - Body: citationRequest

Response:
  - 200: formatted_text: Rendered citation string
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 422: ErrUnprocessable: Unsupported type or unparseable access date
*/
func (handler *Handler) format(writer http.ResponseWriter, request *http.Request) {
	var input citationRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateCitation(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	formatted, err := handler.referenceService.Format(request.Context(), saveInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldFormattedText: formatted,
	})
}

/*
Save persists a citation to the caller's library.

POST /api/v1/references

Description: Renders the formatted string server-side and stores it with the
raw fields as one row owned by the authenticated principal.

Request:
  - Body: citationRequest

Response:
  - 201: StoredReference: Persisted entity including rendered text
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: ErrUnauthorized: Authentication required
  - 422: ErrUnprocessable: Unsupported type or unparseable access date
*/
func (handler *Handler) save(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input citationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateCitation(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	stored, err := handler.referenceService.Save(request.Context(), ownerID, saveInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, stored)
}

/*
List returns the caller's full reference library.

GET /api/v1/references

Description: Rows are ordered by creation time descending, so the most
recently saved citation appears first.

Response:
  - 200: []StoredReference: Library contents (empty array when none)
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	references, err := handler.referenceService.List(request.Context(), ownerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, references)
}

/*
Remove deletes a single citation from the caller's library.

DELETE /api/v1/references/{id}

Response:
  - 204: No Content: Citation removed
  - 401: ErrUnauthorized: Authentication required
  - 404: ErrNotFound: Unknown id or owned by someone else
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.ID(request, "id")
	validator := &validate.Validator{}
	validator.Required("id", id).UUID("id", id)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.referenceService.Delete(request.Context(), ownerID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Export assembles the numbered clipboard text for a selection.

POST /api/v1/references/export

Description: Entries appear in the library's stored order regardless of the
order ids arrive in, numbered from [1] and separated by a blank line.

Request:
  - Body: exportRequest (IDs)

Response:
  - 200: text, count: Clipboard payload and entry count
  - 400: ErrInvalidJSON: Missing ids
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) export(writer http.ResponseWriter, request *http.Request) {
	ownerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input exportRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if len(input.IDs) == 0 {
		respond.Error(writer, request, validate.RequiredError(FieldIDs, "must contain at least one id"))
		return
	}

	result, err := handler.referenceService.Export(request.Context(), ownerID, input.IDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"text":  result.Text,
		"count": result.Count,
	})
}
