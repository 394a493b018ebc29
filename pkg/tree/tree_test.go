package tree_test

import (
	"testing"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_VivifiesPrefixes(t *testing.T) {
	tr := tree.New()
	leaf := tr.Resolve(tree.Root, domain.Path{"a", "b", "c"})

	found, ok := tr.Find(tree.Root, domain.Path{"a", "b", "c"})
	require.True(t, ok)
	assert.Equal(t, leaf, found)

	for _, prefix := range []domain.Path{{"a"}, {"a", "b"}} {
		_, ok := tr.Find(tree.Root, prefix)
		assert.True(t, ok, prefix.String())
	}
	assert.Equal(t, []string{"a"}, tr.Children(tree.Root))
}

func TestResolve_IsStable(t *testing.T) {
	tr := tree.New()
	first := tr.Resolve(tree.Root, domain.Path{"x", "y"})
	second := tr.Resolve(tree.Root, domain.Path{"x", "y"})
	assert.Equal(t, first, second)

	x, ok := tr.Find(tree.Root, domain.Path{"x"})
	require.True(t, ok)
	assert.Equal(t, first, tr.Child(x, "y"))
}

func TestFind_DoesNotCreate(t *testing.T) {
	tr := tree.New()
	_, ok := tr.Find(tree.Root, domain.Path{"ghost"})
	assert.False(t, ok)
	assert.Empty(t, tr.Children(tree.Root))
}

func TestPrune(t *testing.T) {
	tr := tree.New()
	a := tr.Resolve(tree.Root, domain.Path{"a"})
	deep := tr.Resolve(a, domain.Path{"b", "c"})
	tr.Resolve(a, domain.Path{"d"})

	tr.Prune(a)

	assert.Empty(t, tr.Children(a))
	_, ok := tr.Find(tree.Root, domain.Path{"a"})
	assert.True(t, ok, "the pruned node itself stays addressable")
	_, ok = tr.Find(tree.Root, domain.Path{"a", "b"})
	assert.False(t, ok)

	// Re-addressing after a prune creates a fresh node.
	again := tr.Resolve(tree.Root, domain.Path{"a", "b", "c"})
	assert.NotEqual(t, deep, again)
}

func TestChildren_Sorted(t *testing.T) {
	tr := tree.New()
	tr.Resolve(tree.Root, domain.Path{"a", "b"})
	tr.Resolve(tree.Root, domain.Path{"a", "a"})

	a, ok := tr.Find(tree.Root, domain.Path{"a"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, tr.Children(a))
}
