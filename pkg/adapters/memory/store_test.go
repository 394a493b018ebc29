package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/bigraph/pkg/adapters/memory"
	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	ports.RunDocumentStoreContract(t, memory.NewStore())
}

func TestStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	doc := domain.Document{State: map[string]any{"cell": map[string]any{"level": 1.0}}}

	_, err := store.Save(ctx, "doc", doc)
	require.NoError(t, err)
	doc.State["cell"].(map[string]any)["level"] = 9.0

	loaded, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, 1.0, loaded.State["cell"].(map[string]any)["level"])
}
