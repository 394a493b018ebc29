package ports

import (
	"context"
	"testing"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	doc := domain.Document{
		Schema: map[string]any{"x": map[string]any{"_type": "float"}},
		State:  map[string]any{"x": 2.0},
	}

	t.Run("Save and Load", func(t *testing.T) {
		_, err := store.Save(ctx, "contract", doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, "contract")
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.State, loaded.State)
		assert.Equal(t, doc.Schema, loaded.Schema)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent")
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("List", func(t *testing.T) {
		_, err := store.Save(ctx, "contract-2", doc)
		require.NoError(t, err)

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "contract")
		assert.Contains(t, names, "contract-2")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "contract"))
		require.NoError(t, store.Delete(ctx, "contract"), "Delete is idempotent")

		_, err := store.Load(ctx, "contract")
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})
}
