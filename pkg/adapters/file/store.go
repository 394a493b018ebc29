package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/bigraph/pkg/domain"
	"github.com/aretw0/bigraph/pkg/ports"
	"gopkg.in/yaml.v3"
)

// DefaultDir is where documents are written when no directory is configured.
const DefaultDir = "out"

// Supported extensions. A name without one is stored as JSON.
const (
	ExtJSON = ".json"
	ExtYAML = ".yaml"
	ExtYML  = ".yml"
)

// Store implements ports.DocumentStore using the local filesystem.
// Documents are indented JSON or YAML files chosen by the extension of their name.
type Store struct {
	BasePath string
}

var _ ports.DocumentStore = (*Store)(nil)

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "out".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	return &Store{BasePath: basePath}
}

// Save writes the document atomically and returns its path.
// It writes to a temporary file first, syncs it, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, name string, doc domain.Document) (string, error) {
	if name == "" {
		return "", fmt.Errorf("document name cannot be empty")
	}

	fileName := withExtension(name)
	destPath, err := s.path(fileName)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(destPath)

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure output directory: %w", err)
	}

	data, err := Encode(fileName, doc)
	if err != nil {
		return "", err
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-*-"+filepath.Base(fileName))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return "", fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return "", fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return "", fmt.Errorf("failed to remove existing document for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", fmt.Errorf("failed to move document into place: %w", err)
	}

	return destPath, nil
}

// Load reads a document. A name without extension matches a .json, .yaml or .yml file.
func (s *Store) Load(ctx context.Context, name string) (domain.Document, error) {
	if name == "" {
		return domain.Document{}, fmt.Errorf("document name cannot be empty")
	}

	candidates := []string{name}
	if ext(name) == "" {
		candidates = []string{name + ExtJSON, name + ExtYAML, name + ExtYML}
	}
	for _, candidate := range candidates {
		path, err := s.path(candidate)
		if err != nil {
			return domain.Document{}, err
		}
		doc, err := ReadFile(path)
		if err == nil {
			return doc, nil
		}
		if !os.IsNotExist(err) {
			return domain.Document{}, err
		}
	}
	return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
}

// Delete removes every file stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("document name cannot be empty")
	}

	candidates := []string{name}
	if ext(name) == "" {
		candidates = []string{name + ExtJSON, name + ExtYAML, name + ExtYML}
	}
	for _, candidate := range candidates {
		path, err := s.path(candidate)
		if err != nil {
			return err
		}
		err = os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete document: %w", err)
		}
	}
	return nil
}

// List returns the names of the stored documents without their extension.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	seen := map[string]bool{}
	names := []string{}
	for _, entry := range entries {
		e := ext(entry.Name())
		if entry.IsDir() || e == "" || strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Encode renders a document in the format the file name asks for.
func Encode(fileName string, doc domain.Document) ([]byte, error) {
	switch ext(fileName) {
	case ExtYAML, ExtYML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// ReadFile decodes a JSON or YAML document. Values are normalized to their JSON
// form so both formats load identically.
func ReadFile(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	var raw domain.Document
	switch ext(path) {
	case ExtYAML, ExtYML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to normalize %s: %w", filepath.Base(path), err)
	}
	var doc domain.Document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("failed to normalize %s: %w", filepath.Base(path), err)
	}
	if doc.Schema == nil {
		doc.Schema = map[string]any{}
	}
	if doc.State == nil {
		doc.State = map[string]any{}
	}
	return doc, nil
}

// path joins a document file name to the base path. Names may contain
// subdirectories but must stay inside the base path.
func (s *Store) path(fileName string) (string, error) {
	if filepath.IsAbs(fileName) {
		return "", fmt.Errorf("%w: document name %q must be relative", domain.ErrInvalidOperation, fileName)
	}
	path := filepath.Join(s.BasePath, fileName)
	rel, err := filepath.Rel(s.BasePath, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: document name %q escapes %s", domain.ErrInvalidOperation, fileName, s.BasePath)
	}
	return path, nil
}

// ext returns the supported extension of name, or "".
func ext(name string) string {
	switch e := strings.ToLower(filepath.Ext(name)); e {
	case ExtJSON, ExtYAML, ExtYML:
		return e
	}
	return ""
}

func withExtension(name string) string {
	if ext(name) == "" {
		return name + ExtJSON
	}
	return name
}
