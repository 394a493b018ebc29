// Package tree implements the path index of a builder: an arena of nodes addressed by
// integer ids with explicit parent and child edges.
//
// The arena holds no values. It only records which locations have been addressed so that
// handles can be created lazily and descendants can be discarded when a location is
// overwritten. Values always live in the owner's canonical state and schema.
package tree

import (
	"sort"

	"github.com/aretw0/bigraph/pkg/domain"
)

// ID identifies a node inside a Tree. The root is always 0.
type ID int

// Root is the id of the root node.
const Root ID = 0

type entry struct {
	key      string
	parent   ID
	children map[string]ID
}

// Tree is an arena of path nodes. The zero value is not usable; call New.
// Ids are never reused, so a pruned id is never handed out again.
type Tree struct {
	entries []entry
}

// New creates a tree holding only the root.
func New() *Tree {
	return &Tree{
		entries: []entry{{parent: -1, children: map[string]ID{}}},
	}
}

// Child returns the child of id named key, creating it when absent.
func (t *Tree) Child(id ID, key string) ID {
	if child, ok := t.entries[id].children[key]; ok {
		return child
	}
	child := t.alloc(key, id)
	t.entries[id].children[key] = child
	return child
}

// Resolve walks path from id, creating every missing node on the way.
func (t *Tree) Resolve(id ID, path domain.Path) ID {
	for _, key := range path {
		id = t.Child(id, key)
	}
	return id
}

// Find walks path from id without creating nodes.
func (t *Tree) Find(id ID, path domain.Path) (ID, bool) {
	for _, key := range path {
		child, ok := t.entries[id].children[key]
		if !ok {
			return 0, false
		}
		id = child
	}
	return id, true
}

// Children returns the keys of the children of id in sorted order.
func (t *Tree) Children(id ID) []string {
	keys := make([]string, 0, len(t.entries[id].children))
	for k := range t.entries[id].children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prune discards every descendant of id. The node itself stays addressable.
func (t *Tree) Prune(id ID) {
	for _, child := range t.entries[id].children {
		t.release(child)
	}
	t.entries[id].children = map[string]ID{}
}

func (t *Tree) alloc(key string, parent ID) ID {
	t.entries = append(t.entries, entry{key: key, parent: parent, children: map[string]ID{}})
	return ID(len(t.entries) - 1)
}

func (t *Tree) release(id ID) {
	for _, child := range t.entries[id].children {
		t.release(child)
	}
	t.entries[id] = entry{parent: -1, children: map[string]ID{}}
}
