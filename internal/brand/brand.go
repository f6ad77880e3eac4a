package brand

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Known top-level document sections. Anything else lands in Brand.Extra.
var knownSections = map[string]bool{
	"brand": true, "colors": true, "typography": true, "layout": true,
	"assets": true, "templates": true, "template_options": true,
	"pdf_settings": true, "compliance": true, "metadata": true,
	keyIsProtected: true, keyProtectionLevel: true, keyProtectedBy: true,
	keyProtectedAt: true, keyProtectionReason: true,
}

// ResolvedAsset is an asset reference from a brand document resolved to an
// absolute path. Resolved is false when the file is absent on disk; a load
// never fails because of a missing asset.
type ResolvedAsset struct {
	Path     string
	Resolved bool
}

// Brand is the typed view of a loaded brand document. The raw document is
// kept alongside so saves are lossless; unknown top-level keys are preserved
// in Extra.
type Brand struct {
	Name        string // registry key: the brand's directory name
	DisplayName string
	Tagline     string
	Website     string
	Community   string

	Colors          map[string]string
	Typography      Document
	Layout          map[string]string
	Assets          map[string][]ResolvedAsset
	Templates       map[string]string
	TemplateOptions Document
	PDFSettings     Document
	Compliance      Document
	Metadata        Document
	Extra           Document

	Path           string // brand directory
	CreatedAt      time.Time
	UpdatedAt      time.Time
	TemplateSource string
	Status         string
	Version        string
	Protection     Protection

	// CSSVariables is the :root custom-property block consumed read-only by
	// the rendering system.
	CSSVariables string

	// Raw is the document exactly as loaded from disk.
	Raw Document
}

// brandFromDocument assembles the typed view of a raw document. Asset paths
// are resolved relative to the brand directory; missing files are warned
// about, never fatal.
func brandFromDocument(name, dir string, doc Document, exists func(string) bool, logger Logger) *Brand {
	info, _ := doc.Section("brand")
	meta, _ := doc.Section("metadata")

	b := &Brand{
		Name:            name,
		DisplayName:     stringField(info, "name", name),
		Tagline:         stringField(info, "tagline", ""),
		Website:         stringField(info, "website", ""),
		Community:       stringField(info, "community", ""),
		Colors:          doc.StringSection("colors"),
		Typography:      sectionOrEmpty(doc, "typography"),
		Layout:          doc.StringSection("layout"),
		Templates:       doc.StringSection("templates"),
		TemplateOptions: sectionOrEmpty(doc, "template_options"),
		PDFSettings:     sectionOrEmpty(doc, "pdf_settings"),
		Compliance:      sectionOrEmpty(doc, "compliance"),
		Metadata:        sectionOrEmpty(doc, "metadata"),
		Extra:           Document{},
		Path:            dir,
		TemplateSource:  stringField(meta, "template_source", ""),
		Status:          stringField(meta, "status", "active"),
		Version:         stringField(meta, "version", "1.0.0"),
		Protection:      protectionFromDocument(doc),
		Raw:             doc,
	}

	for key, value := range doc {
		if !knownSections[key] {
			b.Extra[key] = value
		}
	}

	b.CreatedAt = timeField(meta, "created_at", name, logger)
	b.UpdatedAt = timeField(meta, "updated_at", name, logger)
	b.Assets = resolveAssets(doc, dir, exists, logger)
	b.CSSVariables = b.generateCSSVariables()
	return b
}

// resolveAssets resolves every entry of the assets section to absolute paths,
// flattening list-valued roles (such as fonts) and scalar roles into the same
// shape. Empty entries are skipped with a warning.
func resolveAssets(doc Document, dir string, exists func(string) bool, logger Logger) map[string][]ResolvedAsset {
	resolved := make(map[string][]ResolvedAsset)
	assets, ok := doc.Section("assets")
	if !ok {
		return resolved
	}

	for role, value := range assets {
		var raw []string
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				if s, ok := scalarString(item); ok && s != "" {
					raw = append(raw, s)
				}
			}
		default:
			s, ok := scalarString(v)
			if !ok || s == "" {
				logger.Warn("empty asset path", "role", role)
				continue
			}
			raw = []string{s}
		}

		refs := make([]ResolvedAsset, 0, len(raw))
		for _, p := range raw {
			abs := p
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(dir, p)
			}
			ref := ResolvedAsset{Path: abs, Resolved: exists(abs)}
			if !ref.Resolved {
				logger.Warn("asset not found", "role", role, "path", abs)
			}
			refs = append(refs, ref)
		}
		resolved[role] = refs
	}
	return resolved
}

// generateCSSVariables renders the brand's colors, typography, and layout as
// a :root custom-property block for the rendering system.
func (b *Brand) generateCSSVariables() string {
	var lines []string
	lines = append(lines, ":root {")

	for _, name := range sortedKeys(b.Colors) {
		lines = append(lines, fmt.Sprintf("  --color-%s: %s;", cssName(name), b.Colors[name]))
	}

	fallback := stringField(b.Typography, "fallback", "sans-serif")
	if primary := stringField(b.Typography, "primary_font", ""); primary != "" {
		lines = append(lines, fmt.Sprintf("  --font-primary: '%s', %s;", primary, fallback))
	}
	if secondary := stringField(b.Typography, "secondary_font", ""); secondary != "" {
		lines = append(lines, fmt.Sprintf("  --font-secondary: '%s', %s;", secondary, fallback))
	}

	sizes := b.Typography.StringSection("sizes")
	for _, name := range sortedKeys(sizes) {
		lines = append(lines, fmt.Sprintf("  --font-size-%s: %s;", cssName(name), sizes[name]))
	}
	weights := b.Typography.StringSection("weights")
	for _, name := range sortedKeys(weights) {
		lines = append(lines, fmt.Sprintf("  --font-weight-%s: %s;", cssName(name), weights[name]))
	}

	for _, name := range sortedKeys(b.Layout) {
		lines = append(lines, fmt.Sprintf("  --layout-%s: %s;", cssName(name), b.Layout[name]))
	}

	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func cssName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sectionOrEmpty(doc Document, name string) Document {
	if sec, ok := doc.Section(name); ok {
		return sec
	}
	return Document{}
}

func stringField(doc Document, key, fallback string) string {
	if doc == nil {
		return fallback
	}
	if s, ok := doc[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func timeField(doc Document, key, brandName string, logger Logger) time.Time {
	if doc == nil {
		return time.Time{}
	}
	s, ok := doc[key].(string)
	if !ok || s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		logger.Warn("invalid timestamp", "brand", brandName, "field", key, "value", s)
		return time.Time{}
	}
	return t
}
