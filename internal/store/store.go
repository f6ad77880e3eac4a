package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"brandkit/internal/brand"
)

// YAMLStore reads and writes brand documents as YAML files on disk. Saves
// are atomic with respect to readers: the document is written to a temp
// file in the target directory and renamed into place.
type YAMLStore struct{}

// NewYAMLStore creates a new YAML document store.
func NewYAMLStore() *YAMLStore {
	return &YAMLStore{}
}

// Load reads and parses the document at path. An empty or unparseable file
// is a validation error; a missing file surfaces the fs-level error.
func (s *YAMLStore) Load(path string) (brand.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var doc brand.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %v: %w", filepath.Base(path), err, brand.ErrValidation)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("empty document %s: %w", filepath.Base(path), brand.ErrValidation)
	}
	return doc, nil
}

// Save writes the document to path, creating parent directories as needed.
func (s *YAMLStore) Save(path string, doc brand.Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}

	success = true
	return nil
}

// Exists reports whether a document file is present at path.
func (s *YAMLStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Compile-time check that YAMLStore implements brand.DocumentStore
var _ brand.DocumentStore = (*YAMLStore)(nil)
