package brand

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// TemplateFileName is the document file inside each template directory.
const TemplateFileName = "template_config.yaml"

// templateInfoKey is the document section holding template metadata.
const templateInfoKey = "template_info"

// templateSignificantSections bump a template's version on update.
var templateSignificantSections = map[string]bool{
	"brand": true, "colors": true, "typography": true, "assets": true, "compliance": true,
}

// optionalAssetRoles are the asset keys treated as optional when deriving a
// template's asset requirements.
var optionalAssetRoles = []string{"watermark", "favicon", "background"}

// Template is a named preset document used to seed new brands. Templates are
// versioned independently of brands and carry no protection state.
type Template struct {
	Name           string
	Description    string
	Category       string
	Version        string
	Config         Document
	Features       []string
	RequiredAssets []string
	OptionalAssets []string
}

// TemplateResult reports a template create or update.
type TemplateResult struct {
	TemplateName string
	Path         string
	Category     string
	Version      string
	Warnings     []string
}

// TemplateSummary is one row of a template listing.
type TemplateSummary struct {
	Name           string
	Description    string
	Category       string
	Version        string
	Features       []string
	RequiredAssets []string
	OptionalAssets []string
}

// TemplateCatalog stores and retrieves the preset documents used to seed
// brands. Presets are consumed read-only by brand creation.
type TemplateCatalog struct {
	root   string
	store  DocumentStore
	clock  Clock
	logger Logger
	locks  *namedLocks
}

// NewTemplateCatalog creates a catalog rooted at root, creating the
// directory if absent.
func NewTemplateCatalog(root string, store DocumentStore, clock Clock, logger Logger) (*TemplateCatalog, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating templates root: %w", err)
	}
	return &TemplateCatalog{
		root:   root,
		store:  store,
		clock:  clock,
		logger: logger,
		locks:  newNamedLocks(),
	}, nil
}

// Root returns the catalog's root directory.
func (c *TemplateCatalog) Root() string { return c.root }

func (c *TemplateCatalog) templateDir(name string) string {
	return filepath.Join(c.root, name)
}

func (c *TemplateCatalog) configPath(name string) string {
	return filepath.Join(c.templateDir(name), TemplateFileName)
}

// Create stores a new preset. Required and optional asset roles are derived
// by scanning the document's assets section and persisted as template
// metadata. Creation rolls back its directory on failure.
func (c *TemplateCatalog) Create(name string, config Document, description, category string, features []string) (*TemplateResult, error) {
	if err := validateEntityName(name); err != nil {
		return nil, err
	}
	if category == "" {
		category = "custom"
	}

	release := c.locks.Acquire(name)
	defer release()

	dir := c.templateDir(name)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("template %q: %w", name, ErrAlreadyExists)
	}

	result, err := c.createLocked(name, dir, config, description, category, features)
	if err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Error("rollback failed", "template", name, "error", rmErr)
		}
		return nil, err
	}
	return result, nil
}

func (c *TemplateCatalog) createLocked(name, dir string, config Document, description, category string, features []string) (*TemplateResult, error) {
	doc := config.DeepCopy()
	if doc == nil {
		doc = Document{}
	}
	if features == nil {
		features = []string{}
	}

	info := sectionOrEmpty(doc, templateInfoKey)
	info["name"] = name
	info["description"] = description
	info["category"] = category
	info["version"] = "1.0.0"
	info["created_at"] = c.clock.Now().Format(time.RFC3339)
	info["features"] = toAnyList(features)
	info["required_assets"] = toAnyList(requiredAssets(doc))
	info["optional_assets"] = toAnyList(optionalAssets(doc))
	doc[templateInfoKey] = map[string]any(info)

	warnings := validateTemplateStructure(doc)

	if err := c.store.Save(c.configPath(name), doc); err != nil {
		return nil, fmt.Errorf("saving template config: %w", err)
	}

	if _, ok := doc.Section("assets"); ok {
		if err := os.MkdirAll(filepath.Join(dir, "assets"), 0755); err != nil {
			return nil, fmt.Errorf("creating template assets directory: %w", err)
		}
	}

	c.logger.Info("template created", "template", name, "category", category)
	return &TemplateResult{
		TemplateName: name,
		Path:         dir,
		Category:     category,
		Version:      "1.0.0",
		Warnings:     warnings,
	}, nil
}

// Load reads a preset by name.
func (c *TemplateCatalog) Load(name string) (*Template, error) {
	path := c.configPath(name)
	if !c.store.Exists(path) {
		return nil, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}

	doc, err := c.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}

	info := sectionOrEmpty(doc, templateInfoKey)
	return &Template{
		Name:           stringField(info, "name", name),
		Description:    stringField(info, "description", ""),
		Category:       stringField(info, "category", "custom"),
		Version:        stringField(info, "version", "1.0.0"),
		Config:         doc,
		Features:       stringList(info["features"]),
		RequiredAssets: stringList(info["required_assets"]),
		OptionalAssets: stringList(info["optional_assets"]),
	}, nil
}

// List returns template summaries, optionally filtered by category, sorted
// by (category, name). Unreadable templates are skipped with a warning.
func (c *TemplateCatalog) List(categoryFilter string) ([]TemplateSummary, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("reading templates root: %w", err)
	}

	var summaries []TemplateSummary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !c.store.Exists(c.configPath(entry.Name())) {
			continue
		}

		tpl, err := c.Load(entry.Name())
		if err != nil {
			c.logger.Warn("skipping unreadable template", "template", entry.Name(), "error", err)
			continue
		}
		if categoryFilter != "" && tpl.Category != categoryFilter {
			continue
		}

		summaries = append(summaries, TemplateSummary{
			Name:           tpl.Name,
			Description:    tpl.Description,
			Category:       tpl.Category,
			Version:        tpl.Version,
			Features:       tpl.Features,
			RequiredAssets: tpl.RequiredAssets,
			OptionalAssets: tpl.OptionalAssets,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Category != summaries[j].Category {
			return summaries[i].Category < summaries[j].Category
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

// Update merges changes into a preset. Significant section changes bump the
// version; asset role lists are re-derived when the assets section changed.
// Templates carry no protection guard.
func (c *TemplateCatalog) Update(name string, updates Document) (*TemplateResult, error) {
	release := c.locks.Acquire(name)
	defer release()

	path := c.configPath(name)
	if !c.store.Exists(path) {
		return nil, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}

	current, err := c.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}

	merged := Merge(current, updates)

	info := sectionOrEmpty(merged, templateInfoKey)
	info["updated_at"] = c.clock.Now().Format(time.RFC3339)

	version := stringField(info, "version", "1.0.0")
	if hasSignificantTemplateChange(updates) {
		version = bumpMinor(version)
		info["version"] = version
	}

	if _, ok := updates["assets"]; ok {
		info["required_assets"] = toAnyList(requiredAssets(merged))
		info["optional_assets"] = toAnyList(optionalAssets(merged))
	}
	merged[templateInfoKey] = map[string]any(info)

	warnings := validateTemplateStructure(merged)

	if err := c.store.Save(path, merged); err != nil {
		return nil, fmt.Errorf("template %q: saving update: %w", name, err)
	}

	c.logger.Info("template updated", "template", name, "version", version)
	return &TemplateResult{
		TemplateName: name,
		Path:         c.templateDir(name),
		Category:     stringField(info, "category", "custom"),
		Version:      version,
		Warnings:     warnings,
	}, nil
}

// Delete removes a preset directory. Requires explicit confirmation.
func (c *TemplateCatalog) Delete(name string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("template %q: confirmation required for deletion: %w", name, ErrInvalidArgument)
	}

	release := c.locks.Acquire(name)
	defer release()

	dir := c.templateDir(name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("template %q: %w", name, ErrNotFound)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("template %q: removing directory: %w", name, err)
	}

	c.logger.Info("template deleted", "template", name)
	return nil
}

// TemplateReport is the advisory validation result for a preset.
type TemplateReport struct {
	TemplateName string
	Status       string // "valid", "warning", or "error"
	Structure    []string
	Assets       []string
}

// Validate checks a preset's structure and asset references. Advisory only.
func (c *TemplateCatalog) Validate(name string) (*TemplateReport, error) {
	tpl, err := c.Load(name)
	if err != nil {
		return nil, err
	}

	structure := validateTemplateStructure(tpl.Config)
	assets := validateTemplateAssets(tpl)

	status := "valid"
	switch {
	case len(structure) > 0:
		status = "error"
	case len(assets) > 0:
		status = "warning"
	}

	return &TemplateReport{
		TemplateName: name,
		Status:       status,
		Structure:    structure,
		Assets:       assets,
	}, nil
}

// requiredAssets collects every non-empty value in the assets section,
// flattening lists, plus anything named by compliance.required_assets.
func requiredAssets(doc Document) []string {
	seen := map[string]bool{}
	var out []string
	add := func(path string) {
		if path != "" && !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	if assets, ok := doc.Section("assets"); ok {
		for _, value := range assets {
			for _, p := range flattenAssetValue(value) {
				add(p)
			}
		}
	}
	if compliance, ok := doc.Section("compliance"); ok {
		for _, p := range stringList(compliance["required_assets"]) {
			add(p)
		}
	}

	sort.Strings(out)
	return out
}

// optionalAssets collects values under the fixed optional role allow-list.
func optionalAssets(doc Document) []string {
	assets, ok := doc.Section("assets")
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	for _, role := range optionalAssetRoles {
		for _, p := range flattenAssetValue(assets[role]) {
			if p != "" && !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}

// flattenAssetValue turns a scalar or list asset entry into a flat list of
// path strings.
func flattenAssetValue(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := scalarString(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := scalarString(val); ok && s != "" {
			return []string{s}
		}
		return nil
	}
}

func hasSignificantTemplateChange(updates Document) bool {
	for key := range updates {
		if templateSignificantSections[key] {
			return true
		}
	}
	return false
}

func validateTemplateStructure(doc Document) []string {
	warnings := validateStructure(doc)
	info, ok := doc.Section(templateInfoKey)
	if !ok {
		return append(warnings, "missing template_info section")
	}
	for _, field := range []string{"name", "description", "category"} {
		if _, ok := info[field]; !ok {
			warnings = append(warnings, fmt.Sprintf("missing template_info field: %s", field))
		}
	}
	return warnings
}

const maxTemplateRequiredAssets = 20

func validateTemplateAssets(tpl *Template) []string {
	var issues []string

	if len(tpl.RequiredAssets) > maxTemplateRequiredAssets {
		issues = append(issues, fmt.Sprintf("template requires too many assets (>%d)", maxTemplateRequiredAssets))
	}

	hasStandardType := false
	for _, asset := range append(append([]string{}, tpl.RequiredAssets...), tpl.OptionalAssets...) {
		switch ext(asset) {
		case ".png", ".jpg", ".jpeg", ".svg", ".woff", ".woff2", ".ttf", ".otf", ".css":
			hasStandardType = true
		}
	}
	if !hasStandardType {
		issues = append(issues, "template does not reference any standard asset types")
	}
	return issues
}

func toAnyList(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
