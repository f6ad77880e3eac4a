package brand

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

// ConfigFileName is the single document file inside each brand directory.
const ConfigFileName = "brand_config.yaml"

const maxBrandNameLength = 50

// Registry is the entry point for brand lifecycle operations. It composes
// the document store, template catalog, backup manager, protection guard,
// and audit log into create/load/update/delete/list operations.
//
// Mutations to a given brand are serialized by a per-name mutex. There is no
// cross-process locking; the registry assumes a single process owns the
// brands root.
type Registry struct {
	brandsRoot string
	store      DocumentStore
	templates  *TemplateCatalog
	backups    *BackupManager
	audit      AuditLog
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	locks      *namedLocks
}

// NewRegistry creates a Registry rooted at brandsRoot, creating the root
// directory if absent.
func NewRegistry(brandsRoot string, store DocumentStore, templates *TemplateCatalog, backups *BackupManager, audit AuditLog, logger Logger, clock Clock, idgen IDGenerator) (*Registry, error) {
	if err := os.MkdirAll(brandsRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating brands root: %w", err)
	}
	return &Registry{
		brandsRoot: brandsRoot,
		store:      store,
		templates:  templates,
		backups:    backups,
		audit:      audit,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		locks:      newNamedLocks(),
	}, nil
}

// Root returns the registry's root directory.
func (r *Registry) Root() string { return r.brandsRoot }

// BrandDir returns the directory owned by the named brand.
func (r *Registry) BrandDir(name string) string {
	return filepath.Join(r.brandsRoot, name)
}

func (r *Registry) configPath(name string) string {
	return filepath.Join(r.BrandDir(name), ConfigFileName)
}

// loadDocument reads a brand's raw document. A missing config file wraps
// ErrNotFound; a malformed one wraps ErrValidation (from the store).
func (r *Registry) loadDocument(name string) (Document, error) {
	path := r.configPath(name)
	if !r.store.Exists(path) {
		return nil, fmt.Errorf("brand %q: %w", name, ErrNotFound)
	}
	doc, err := r.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("brand %q: %w", name, err)
	}
	return doc, nil
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// CreateOptions selects the configuration sources for a new brand. Sources
// compose in precedence order: copy-from or template as the base, then
// Config merged on top, then Overrides on top of that.
type CreateOptions struct {
	Config    Document
	Template  string
	Overrides Document
	CopyFrom  string
}

// CreateResult reports a successful brand creation.
type CreateResult struct {
	BrandName    string
	Path         string
	TemplateUsed string
	CreatedFiles []string
	Warnings     []string
}

// Create makes a new brand directory with its document and standard subtree.
// Creation is all-or-nothing: any failure after the directory is created
// removes it again.
func (r *Registry) Create(name string, opts CreateOptions) (*CreateResult, error) {
	if err := validateEntityName(name); err != nil {
		return nil, err
	}

	release := r.locks.Acquire(name)
	defer release()

	brandDir := r.BrandDir(name)
	if _, err := os.Stat(brandDir); err == nil {
		return nil, fmt.Errorf("brand %q: %w", name, ErrAlreadyExists)
	}

	result, err := r.createLocked(name, brandDir, opts)
	if err != nil {
		if rmErr := os.RemoveAll(brandDir); rmErr != nil && !os.IsNotExist(rmErr) {
			r.logger.Error("rollback failed", "brand", name, "error", rmErr)
		}
		return nil, err
	}
	return result, nil
}

func (r *Registry) createLocked(name, brandDir string, opts CreateOptions) (*CreateResult, error) {
	for _, sub := range []string{
		filepath.Join("assets", "images"),
		filepath.Join("assets", "fonts"),
		"templates",
		"backups",
	} {
		if err := os.MkdirAll(filepath.Join(brandDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("creating brand directories: %w", err)
		}
	}

	doc := Document{}
	templateUsed := ""

	switch {
	case opts.CopyFrom != "":
		source, err := r.loadDocument(opts.CopyFrom)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("source brand %q: %w", opts.CopyFrom, ErrNotFound)
			}
			return nil, err
		}
		doc = source
		templateUsed = opts.CopyFrom

		sourceDir := r.BrandDir(opts.CopyFrom)
		for _, sub := range []string{"assets", "templates"} {
			src := filepath.Join(sourceDir, sub)
			if _, err := os.Stat(src); err != nil {
				continue
			}
			if err := copyTree(src, filepath.Join(brandDir, sub)); err != nil {
				return nil, fmt.Errorf("copying %s from %q: %w", sub, opts.CopyFrom, err)
			}
		}
		r.logger.Info("brand structure copied", "from", opts.CopyFrom, "to", name)

	case opts.Template != "":
		tpl, err := r.templates.Load(opts.Template)
		if err != nil {
			return nil, err
		}
		doc = tpl.Config.DeepCopy()
		delete(doc, templateInfoKey)
		templateUsed = opts.Template
	}

	if opts.Config != nil {
		if templateUsed != "" {
			doc = Merge(doc, opts.Config)
		} else {
			doc = opts.Config.DeepCopy()
		}
	}
	if opts.Overrides != nil {
		doc = Merge(doc, opts.Overrides)
	}

	if opts.CopyFrom != "" {
		stripProtection(doc)
	}

	now := r.clock.Now()
	meta := sectionOrEmpty(doc, "metadata")
	meta["created_at"] = now.Format(time.RFC3339)
	meta["updated_at"] = now.Format(time.RFC3339)
	meta["version"] = "1.0.0"
	meta["status"] = "active"
	meta["template_source"] = templateUsed
	doc["metadata"] = map[string]any(meta)

	info := sectionOrEmpty(doc, "brand")
	info["name"] = displayName(name)
	doc["brand"] = map[string]any(info)

	if err := r.store.Save(r.configPath(name), doc); err != nil {
		return nil, fmt.Errorf("saving brand config: %w", err)
	}

	created, err := listTree(brandDir)
	if err != nil {
		return nil, fmt.Errorf("listing created files: %w", err)
	}

	r.logger.Info("brand created", "brand", name, "template", templateUsed)
	return &CreateResult{
		BrandName:    name,
		Path:         brandDir,
		TemplateUsed: templateUsed,
		CreatedFiles: created,
		Warnings:     validateStructure(doc),
	}, nil
}

// Load reads and resolves a brand. Asset paths become absolute; missing
// asset files are warned about and flagged, never fatal.
func (r *Registry) Load(name string) (*Brand, error) {
	doc, err := r.loadDocument(name)
	if err != nil {
		return nil, err
	}
	b := brandFromDocument(name, r.BrandDir(name), doc, fileExists, r.logger)
	r.logger.Debug("brand loaded", "brand", name, "version", b.Version)
	return b, nil
}

// UpdateOptions control a brand update.
type UpdateOptions struct {
	CreateBackup bool
	Force        bool
}

// UpdateResult reports a successful update.
type UpdateResult struct {
	BrandName     string
	BackupPath    string
	UpdatedFields []string
	Version       string
	Warnings      []string
}

// Update merges a partial document onto the brand's current document. The
// protection guard runs first unless Force is set — force does not override
// the guard, it skips it. A snapshot of the pre-update document is taken
// when CreateBackup is set. The version is bumped when a major-impact
// section changed.
func (r *Registry) Update(name string, updates Document, opts UpdateOptions) (*UpdateResult, error) {
	release := r.locks.Acquire(name)
	defer release()
	return r.updateLocked(name, updates, opts)
}

func (r *Registry) updateLocked(name string, updates Document, opts UpdateOptions) (*UpdateResult, error) {
	if !opts.Force {
		if err := r.checkProtection(name, "update"); err != nil {
			return nil, err
		}
	}

	current, err := r.loadDocument(name)
	if err != nil {
		return nil, err
	}

	backupPath := ""
	if opts.CreateBackup {
		backupPath, err = r.backups.Snapshot(r.BrandDir(name), current)
		if err != nil {
			return nil, fmt.Errorf("brand %q: %w", name, err)
		}
	}

	merged := Merge(current, updates)

	meta := sectionOrEmpty(merged, "metadata")
	meta["updated_at"] = r.clock.Now().Format(time.RFC3339)

	changed := make([]string, 0, len(updates))
	for key := range updates {
		changed = append(changed, key)
	}
	sort.Strings(changed)

	version := stringField(meta, "version", "1.0.0")
	version = NextVersion(version, changed)
	meta["version"] = version
	merged["metadata"] = map[string]any(meta)

	warnings := validateStructure(merged)

	if err := r.store.Save(r.configPath(name), merged); err != nil {
		return nil, fmt.Errorf("brand %q: saving update: %w", name, err)
	}

	r.logger.Info("brand updated", "brand", name, "version", version, "fields", strings.Join(changed, ","))
	return &UpdateResult{
		BrandName:     name,
		BackupPath:    backupPath,
		UpdatedFields: changed,
		Version:       version,
		Warnings:      warnings,
	}, nil
}

// DeleteOptions control a brand deletion.
type DeleteOptions struct {
	Confirm      bool
	Force        bool
	CreateBackup bool
}

// DeleteResult reports a successful deletion.
type DeleteResult struct {
	BrandName     string
	ArchivePath   string
	BackupCreated bool
	ForceUsed     bool
	FilesDeleted  int
	DirsRemoved   int
	BytesDeleted  int64
}

// Delete removes a brand directory. Requires Confirm or Force; the guard
// runs unless Force. An archive of the whole directory is stored before
// removal when CreateBackup is set — except under Force, which is the fast,
// unsafe path and skips the backup too.
func (r *Registry) Delete(name string, opts DeleteOptions) (*DeleteResult, error) {
	if !opts.Confirm && !opts.Force {
		return nil, fmt.Errorf("brand %q: confirmation required for deletion: %w", name, ErrInvalidArgument)
	}

	release := r.locks.Acquire(name)
	defer release()

	brandDir := r.BrandDir(name)
	if _, err := os.Stat(brandDir); err != nil {
		return nil, fmt.Errorf("brand %q: %w", name, ErrNotFound)
	}

	if !opts.Force {
		if err := r.checkProtection(name, "delete"); err != nil {
			return nil, err
		}
	}

	files, dirs, bytes, err := countTree(brandDir)
	if err != nil {
		return nil, fmt.Errorf("brand %q: sizing directory: %w", name, err)
	}

	archivePath := ""
	if opts.CreateBackup && !opts.Force {
		archivePath, err = r.backups.Archive(name, brandDir)
		if err != nil {
			return nil, fmt.Errorf("brand %q: %w", name, err)
		}
	}

	if err := os.RemoveAll(brandDir); err != nil {
		return nil, fmt.Errorf("brand %q: removing directory: %w", name, err)
	}

	r.logger.Info("brand deleted", "brand", name, "files", files, "bytes", bytes, "force", opts.Force)
	return &DeleteResult{
		BrandName:     name,
		ArchivePath:   archivePath,
		BackupCreated: archivePath != "",
		ForceUsed:     opts.Force,
		FilesDeleted:  files,
		DirsRemoved:   dirs,
		BytesDeleted:  bytes,
	}, nil
}

// ListOptions control brand listing.
type ListOptions struct {
	Detailed     bool
	StatusFilter string
}

// Summary is one row of a brand listing.
type Summary struct {
	Name           string
	DisplayName    string
	Status         string
	Version        string
	TemplateSource string
	CreatedAt      string
	UpdatedAt      string
	TotalAssets    int
	TotalSize      int64
}

// List returns summaries of every brand under the root, sorted by name.
// Unreadable brand documents are skipped with a warning. Detailed mode
// walks each brand's assets tree for counts and sizes.
func (r *Registry) List(opts ListOptions) ([]Summary, error) {
	entries, err := os.ReadDir(r.brandsRoot)
	if err != nil {
		return nil, fmt.Errorf("reading brands root: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := r.configPath(name)
		if !r.store.Exists(path) {
			continue
		}

		doc, err := r.store.Load(path)
		if err != nil {
			r.logger.Warn("skipping unreadable brand", "brand", name, "error", err)
			continue
		}

		meta := sectionOrEmpty(doc, "metadata")
		status := stringField(meta, "status", "active")
		if opts.StatusFilter != "" && status != opts.StatusFilter {
			continue
		}

		info := sectionOrEmpty(doc, "brand")
		s := Summary{
			Name:        name,
			DisplayName: stringField(info, "name", name),
			Status:      status,
		}

		if opts.Detailed {
			s.Version = stringField(meta, "version", "1.0.0")
			s.TemplateSource = stringField(meta, "template_source", "")
			s.CreatedAt = stringField(meta, "created_at", "")
			s.UpdatedAt = stringField(meta, "updated_at", "")

			assetsDir := filepath.Join(r.BrandDir(name), "assets")
			if _, err := os.Stat(assetsDir); err == nil {
				files, _, size, err := countTree(assetsDir)
				if err != nil {
					r.logger.Warn("sizing assets failed", "brand", name, "error", err)
				} else {
					s.TotalAssets = files
					s.TotalSize = size
				}
			}
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// recordEvent stamps and stores an audit event. The trail is advisory:
// failures are logged, never propagated.
func (r *Registry) recordEvent(e Event) {
	e.ID = r.idgen.New()
	e.CreatedAt = r.clock.Now()
	if err := r.audit.Record(e); err != nil {
		r.logger.Error("recording audit event failed", "brand", e.Brand, "operation", e.Operation, "error", err)
	}
}

// validateStructure returns advisory warnings about a document's shape.
func validateStructure(doc Document) []string {
	warnings := []string{}
	for _, section := range []string{"brand", "colors"} {
		if _, ok := doc[section]; !ok {
			warnings = append(warnings, fmt.Sprintf("missing required section: %s", section))
		}
	}
	return warnings
}

// validateEntityName checks a brand or template name for directory safety:
// alphanumerics plus underscore and hyphen, at most 50 characters, not
// starting with a digit, dot, or underscore.
func validateEntityName(name string) error {
	if name == "" || len(name) > maxBrandNameLength {
		return fmt.Errorf("invalid name %q: must be 1-%d characters: %w", name, maxBrandNameLength, ErrValidation)
	}
	first := rune(name[0])
	if unicode.IsDigit(first) || first == '.' || first == '_' {
		return fmt.Errorf("invalid name %q: must not start with a digit, dot, or underscore: %w", name, ErrValidation)
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' {
			return fmt.Errorf("invalid name %q: only letters, digits, underscore, and hyphen allowed: %w", name, ErrValidation)
		}
	}
	return nil
}

// displayName derives a human-readable name from a registry key:
// underscores become spaces and each word is capitalized.
func displayName(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// copyTree recursively copies the directory at src to dst, creating dst.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}

// listTree returns the relative paths of everything under dir, directories
// marked with a trailing separator.
func listTree(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			rel += string(filepath.Separator)
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// countTree walks dir and returns the number of files, number of
// directories, and total file bytes beneath it.
func countTree(dir string) (files, dirs int, bytes int64, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			dirs++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		return nil
	})
	return files, dirs, bytes, err
}
