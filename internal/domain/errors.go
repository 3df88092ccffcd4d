package domain

import "errors"

var (
	// ErrMalformedSearchTerm signals that a search term is empty after normalization.
	ErrMalformedSearchTerm = errors.New("malformed search term")
	// ErrUnknownSearchVector signals that the embedding service returned no vector.
	ErrUnknownSearchVector = errors.New("unknown search vector")
	// ErrUnknownTypeFilter signals an unrecognized content-type filter name.
	ErrUnknownTypeFilter = errors.New("unknown type filter")
	// ErrUnknownSortOption signals an unrecognized sort option name.
	ErrUnknownSortOption = errors.New("unknown sort option")
	// ErrRequestSizeExceeded signals a page window beyond the configured maximum.
	ErrRequestSizeExceeded = errors.New("request size exceeded")

	// ErrDocumentNotFound signals that a URI lookup matched no document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrAmbiguousDocument signals that a URI lookup matched more than one document.
	ErrAmbiguousDocument = errors.New("ambiguous document lookup")
	// ErrSessionNotFound signals a missing session record.
	ErrSessionNotFound = errors.New("session not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrEmbeddingUnavailable signals an embedding service failure.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrSearchEngineUnavailable signals a search engine failure.
	ErrSearchEngineUnavailable = errors.New("search engine unavailable")
)
