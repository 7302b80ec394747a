package docweave

import (
	"errors"

	"github.com/jmhart/docweave/chunk"
	"github.com/jmhart/docweave/extract"
	"github.com/jmhart/docweave/store"
)

var (
	// ErrInvalidInput is returned for inputs that cannot be processed at
	// all: missing files, unreadable PDFs, malformed layout documents.
	ErrInvalidInput = errors.New("docweave: invalid input")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("docweave: invalid configuration")

	// ErrExternalService is returned when the document-understanding
	// service fails or returns an unusable response.
	ErrExternalService = extract.ErrExternalService

	// ErrPageLimit is returned when the service rejects a request because
	// the document exceeds its per-request page limit. The extract client
	// reacts with a one-time first-pages fallback.
	ErrPageLimit = extract.ErrPageLimit

	// ErrMerge is returned when partial chunk results cannot be combined
	// into a coherent document.
	ErrMerge = chunk.ErrMerge

	// ErrDocumentNotFound is returned when a document does not exist in
	// the store.
	ErrDocumentNotFound = store.ErrNotFound

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = store.ErrClosed
)
