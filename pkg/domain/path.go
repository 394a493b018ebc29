package domain

import (
	"strings"
)

// PathSeparator joins path keys in their string form.
const PathSeparator = "/"

// ParentKey steps one level up when a relative path is resolved.
const ParentKey = ".."

// Path is a sequence of keys addressing a location in the document.
// The empty path addresses the root.
type Path []string

// ParsePath splits a slash separated path ("a/b/c"). Empty segments are dropped.
func ParsePath(s string) Path {
	parts := strings.Split(s, PathSeparator)
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		p = append(p, part)
	}
	return p
}

// String returns the slash separated form of the path.
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Append returns a new path with keys appended. The receiver is never aliased.
func (p Path) Append(keys ...string) Path {
	out := make(Path, 0, len(p)+len(keys))
	out = append(out, p...)
	return append(out, keys...)
}

// Parent returns the path without its last key. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1].Append()
}

// Last returns the final key, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Equal reports whether both paths hold the same keys.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Resolve interprets rel relative to p, honouring ".." steps.
// Steps above the root are clamped to the root.
func (p Path) Resolve(rel Path) Path {
	out := p.Append()
	for _, key := range rel {
		if key == ParentKey {
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, key)
	}
	return out
}

// ToPath converts the loose shapes accepted for wire targets into a Path:
// a Path, a []string, a []any of strings or a slash separated string.
func ToPath(v any) (Path, bool) {
	switch t := v.(type) {
	case Path:
		return t.Append(), true
	case []string:
		return Path(t).Append(), true
	case []any:
		p := make(Path, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			p = append(p, s)
		}
		return p, true
	case string:
		return ParsePath(t), true
	default:
		return nil, false
	}
}

// Wire returns the document form of a path (a []any of keys), the shape wires take
// after serialization.
func (p Path) Wire() []any {
	out := make([]any, len(p))
	for i, key := range p {
		out[i] = key
	}
	return out
}
