package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ManifestEntry names a process and the address it is registered from.
type ManifestEntry struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Address     string `yaml:"address" json:"address" validate:"required,contains=:"`
	Description string `yaml:"description" json:"description"`
}

// Manifest represents the structure of processes.yaml.
type Manifest struct {
	Processes []ManifestEntry `yaml:"processes" json:"processes" validate:"dive"`
}

// DefaultManifest is the file the CLI looks for when no manifest is given.
const DefaultManifest = "processes.yaml"

// LoadManifest reads a manifest (YAML or JSON). A missing file yields an empty manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("failed to read process manifest: %w", err)
	}

	var m Manifest
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := validator.New().Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid process manifest %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}
