package ports

import (
	"context"

	"github.com/aretw0/bigraph/pkg/domain"
)

// DocumentStore persists serialized documents under a name.
type DocumentStore interface {
	// Save writes the document and returns where it was stored.
	Save(ctx context.Context, name string, doc domain.Document) (string, error)

	// Load retrieves a document.
	// Returns domain.ErrDocumentNotFound if no document has that name.
	Load(ctx context.Context, name string) (domain.Document, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of the stored documents.
	List(ctx context.Context) ([]string, error)
}
