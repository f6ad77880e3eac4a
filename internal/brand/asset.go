package brand

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// AssetRegistryFileName is the advisory upload index inside each brand
// directory. The filesystem remains the source of truth.
const AssetRegistryFileName = "asset_registry.json"

// maxAssetSize is the decoded size ceiling for uploaded assets.
const maxAssetSize = 10 * 1024 * 1024

const maxAssetFilenameLength = 255

// assetTypeDirs routes an asset type to its directory inside the brand.
var assetTypeDirs = map[string]string{
	"logo":     filepath.Join("assets", "images"),
	"image":    filepath.Join("assets", "images"),
	"font":     filepath.Join("assets", "fonts"),
	"css":      "assets",
	"template": "templates",
}

const defaultAssetDir = "assets/misc"

var assetTypeExtensions = map[string]map[string]bool{
	"logo":  {".png": true, ".jpg": true, ".jpeg": true, ".svg": true, ".gif": true},
	"image": {".png": true, ".jpg": true, ".jpeg": true, ".svg": true, ".gif": true},
	"font":  {".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true},
}

var otherAssetExtensions = map[string]bool{".css": true, ".js": true, ".html": true}

// AssetRecord is one entry of the advisory upload index.
type AssetRecord struct {
	Type       string         `json:"type"`
	Path       string         `json:"path"`
	Size       int64          `json:"size"`
	Checksum   string         `json:"checksum"`
	UploadedAt string         `json:"uploaded_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// UploadResult reports a completed asset upload.
type UploadResult struct {
	BrandName string
	Filename  string
	AssetType string
	Path      string
	Size      int64
	Checksum  string
	Renamed   bool
}

// AssetInfo describes one asset found on disk.
type AssetInfo struct {
	Filename  string
	AssetType string
	Path      string
	Size      int64
}

// AssetCheck is the validation verdict for one indexed asset.
type AssetCheck struct {
	Filename string
	Status   string // "valid", "missing", "invalid_type", or "error"
	Detail   string
}

// CleanupSummary reports an asset cleanup pass. Unused lists every file no
// document field references; Removed is the subset actually deleted, which
// is empty unless the pass ran with removal enabled. BytesFreed is the total
// size of the unused files, freed only when they were removed.
type CleanupSummary struct {
	BrandName   string
	Unused      []string
	Removed     []string
	Kept        int
	BytesFreed  int64
	DirsRemoved int
}

// UploadAsset decodes and stores a base64-encoded asset under the brand's
// type-specific directory. Filename collisions get a numeric suffix rather
// than overwriting. The upload is recorded in the advisory index together
// with any caller-supplied metadata, which is kept free-form.
func (r *Registry) UploadAsset(brandName, filename, assetType, encoded string, metadata map[string]any) (*UploadResult, error) {
	release := r.locks.Acquire(brandName)
	defer release()

	dir := r.BrandDir(brandName)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("brand %q: %w", brandName, ErrNotFound)
	}

	// Validation order: presence, encoded size, encoding, decoded size,
	// filename, extension. The first failure wins.
	if encoded == "" {
		return nil, fmt.Errorf("empty asset data: %w", ErrValidation)
	}
	if len(encoded) > 2*maxAssetSize {
		return nil, fmt.Errorf("encoded asset exceeds size limit: %w", ErrValidation)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 data: %w", ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("decoded asset is empty: %w", ErrValidation)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("asset exceeds %d byte limit: %w", maxAssetSize, ErrValidation)
	}
	if filename == "" || len(filename) > maxAssetFilenameLength {
		return nil, fmt.Errorf("invalid filename %q: %w", filename, ErrValidation)
	}
	if filename != filepath.Base(filename) || strings.ContainsAny(filename, "/\\") {
		return nil, fmt.Errorf("filename %q must not contain path separators: %w", filename, ErrValidation)
	}
	if err := validateAssetExtension(filename, assetType); err != nil {
		return nil, err
	}

	targetDir := filepath.Join(dir, assetDirFor(assetType))
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}

	finalName, renamed := resolveCollision(targetDir, filename)
	targetPath := filepath.Join(targetDir, finalName)

	if err := writeFileAtomic(targetPath, data, 0644); err != nil {
		return nil, fmt.Errorf("writing asset: %w", err)
	}

	checksum := fmt.Sprintf("%x", sha256.Sum256(data))
	record := AssetRecord{
		Type:       assetType,
		Path:       targetPath,
		Size:       int64(len(data)),
		Checksum:   checksum,
		UploadedAt: r.clock.Now().Format(time.RFC3339),
		Metadata:   metadata,
	}
	if err := r.upsertAssetRecord(dir, finalName, record); err != nil {
		// The file landed; a stale index is tolerable.
		r.logger.Warn("asset index update failed", "brand", brandName, "file", finalName, "error", err)
	}

	r.logger.Info("asset uploaded", "brand", brandName, "file", finalName, "type", assetType, "size", len(data))
	return &UploadResult{
		BrandName: brandName,
		Filename:  finalName,
		AssetType: assetType,
		Path:      targetPath,
		Size:      int64(len(data)),
		Checksum:  checksum,
		Renamed:   renamed,
	}, nil
}

// ListAssets walks the brand's asset directories and returns what is
// actually on disk, sorted by filename. Asset types are inferred from the
// directory an asset lives in; typeFilter narrows the result when non-empty.
func (r *Registry) ListAssets(brandName, typeFilter string) ([]AssetInfo, error) {
	dir := r.BrandDir(brandName)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("brand %q: %w", brandName, ErrNotFound)
	}

	var assets []AssetInfo
	for _, sub := range []string{"assets", "templates"} {
		root := filepath.Join(dir, sub)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			assetType := inferAssetType(dir, path)
			if typeFilter != "" && assetType != typeFilter {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			assets = append(assets, AssetInfo{
				Filename:  d.Name(),
				AssetType: assetType,
				Path:      path,
				Size:      info.Size(),
			})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("brand %q: walking assets: %w", brandName, err)
		}
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Filename < assets[j].Filename })
	return assets, nil
}

// ValidateAssets cross-checks the advisory index against the filesystem,
// verifying presence, type, and content checksum of every indexed asset.
func (r *Registry) ValidateAssets(brandName string) ([]AssetCheck, error) {
	dir := r.BrandDir(brandName)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("brand %q: %w", brandName, ErrNotFound)
	}

	index, err := r.loadAssetIndex(dir)
	if err != nil {
		return nil, fmt.Errorf("brand %q: %w", brandName, err)
	}

	checks := make([]AssetCheck, 0, len(index))
	for _, name := range sortedRecordNames(index) {
		record := index[name]
		check := AssetCheck{Filename: name, Status: "valid"}

		info, err := os.Stat(record.Path)
		switch {
		case os.IsNotExist(err):
			check.Status = "missing"
			check.Detail = record.Path
		case err != nil:
			check.Status = "error"
			check.Detail = err.Error()
		case info.IsDir():
			check.Status = "error"
			check.Detail = "indexed path is a directory"
		case validateAssetExtension(name, record.Type) != nil:
			check.Status = "invalid_type"
			check.Detail = fmt.Sprintf("extension does not match type %q", record.Type)
		default:
			sum, err := fileChecksum(record.Path)
			switch {
			case err != nil:
				check.Status = "error"
				check.Detail = err.Error()
			case record.Checksum != "" && sum != record.Checksum:
				check.Status = "error"
				check.Detail = "checksum mismatch"
			}
		}
		checks = append(checks, check)
	}
	return checks, nil
}

// DeleteAsset removes an asset file, preserving a timestamped copy under the
// brand's backups directory first unless createBackup is false.
func (r *Registry) DeleteAsset(brandName, filename string, createBackup bool) error {
	release := r.locks.Acquire(brandName)
	defer release()

	dir := r.BrandDir(brandName)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("brand %q: %w", brandName, ErrNotFound)
	}

	path, err := r.findAsset(dir, filename)
	if err != nil {
		return fmt.Errorf("brand %q: asset %q: %w", brandName, filename, err)
	}

	var backupPath string
	if createBackup {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading asset before delete: %w", err)
		}

		stamp := r.clock.Now().Format(backupTimestampFormat)
		backupPath = filepath.Join(dir, "backups", fmt.Sprintf("%s_%s", stamp, filename))
		if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
			return fmt.Errorf("creating backups directory: %w", err)
		}
		if err := writeFileAtomic(backupPath, data, 0644); err != nil {
			return fmt.Errorf("backing up asset: %w", err)
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing asset: %w", err)
	}

	if err := r.removeAssetRecord(dir, filename); err != nil {
		r.logger.Warn("asset index update failed", "brand", brandName, "file", filename, "error", err)
	}

	r.logger.Info("asset deleted", "brand", brandName, "file", filename, "backup", backupPath)
	return nil
}

// CleanupAssets finds asset files the brand's document no longer references.
// By default it only reports them; with removeUnused it deletes them, prunes
// emptied directories, and drops their index entries. Backups, templates,
// and the index file itself are never touched.
func (r *Registry) CleanupAssets(brandName string, removeUnused bool) (*CleanupSummary, error) {
	release := r.locks.Acquire(brandName)
	defer release()

	dir := r.BrandDir(brandName)
	doc, err := r.loadDocument(brandName)
	if err != nil {
		return nil, err
	}

	referenced := referencedAssetNames(doc)
	summary := &CleanupSummary{BrandName: brandName}

	assetsRoot := filepath.Join(dir, "assets")
	var unused, removed []string
	err = filepath.WalkDir(assetsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if referenced[d.Name()] {
			summary.Kept++
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		unused = append(unused, d.Name())
		summary.BytesFreed += info.Size()
		if !removeUnused {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed = append(removed, d.Name())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("brand %q: cleaning assets: %w", brandName, err)
	}

	sort.Strings(unused)
	sort.Strings(removed)
	summary.Unused = unused
	summary.Removed = removed
	if removeUnused {
		summary.DirsRemoved = pruneEmptyDirs(assetsRoot)

		index, err := r.loadAssetIndex(dir)
		if err == nil {
			changed := false
			for _, name := range removed {
				if _, ok := index[name]; ok {
					delete(index, name)
					changed = true
				}
			}
			if changed {
				if err := r.saveAssetIndex(dir, index); err != nil {
					r.logger.Warn("asset index update failed", "brand", brandName, "error", err)
				}
			}
		}
	}

	r.logger.Info("assets cleaned", "brand", brandName, "unused", len(unused),
		"removed", len(removed), "kept", summary.Kept, "bytes", summary.BytesFreed)
	return summary, nil
}

func assetDirFor(assetType string) string {
	if dir, ok := assetTypeDirs[assetType]; ok {
		return dir
	}
	return filepath.FromSlash(defaultAssetDir)
}

func validateAssetExtension(filename, assetType string) error {
	e := ext(filename)
	if e == "" {
		return fmt.Errorf("filename %q has no extension: %w", filename, ErrValidation)
	}
	allowed, ok := assetTypeExtensions[assetType]
	if !ok {
		allowed = otherAssetExtensions
	}
	if !allowed[e] {
		return fmt.Errorf("extension %q not allowed for asset type %q: %w", e, assetType, ErrValidation)
	}
	return nil
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// resolveCollision returns a free filename in dir, appending _1, _2, ... to
// the stem when the requested name is taken.
func resolveCollision(dir, filename string) (string, bool) {
	if _, err := os.Stat(filepath.Join(dir, filename)); os.IsNotExist(err) {
		return filename, false
	}
	e := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, e)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, e)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate, true
		}
	}
}

// inferAssetType maps an on-disk location back to an asset type.
func inferAssetType(brandDir, path string) string {
	rel, err := filepath.Rel(brandDir, path)
	if err != nil {
		return "other"
	}
	rel = filepath.ToSlash(rel)
	switch {
	case strings.HasPrefix(rel, "assets/images/"):
		return "image"
	case strings.HasPrefix(rel, "assets/fonts/"):
		return "font"
	case strings.HasPrefix(rel, "templates/"):
		return "template"
	case strings.HasPrefix(rel, "assets/misc/"):
		return "other"
	case strings.HasPrefix(rel, "assets/") && ext(path) == ".css":
		return "css"
	default:
		return "other"
	}
}

// findAsset locates filename under the brand's asset and template trees.
func (r *Registry) findAsset(brandDir, filename string) (string, error) {
	var found string
	for _, sub := range []string{"assets", "templates"} {
		root := filepath.Join(brandDir, sub)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if !d.IsDir() && d.Name() == filename {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		if found != "" {
			return found, nil
		}
	}
	return "", ErrNotFound
}

// referencedAssetNames flattens every asset path mentioned by the document
// into a set of base filenames.
func referencedAssetNames(doc Document) map[string]bool {
	referenced := map[string]bool{}
	if assets, ok := doc.Section("assets"); ok {
		for _, value := range assets {
			for _, p := range flattenAssetValue(value) {
				referenced[filepath.Base(p)] = true
			}
		}
	}
	return referenced
}

// pruneEmptyDirs removes empty directories under root, deepest first, and
// returns how many were removed. The root itself is kept.
func pruneEmptyDirs(root string) int {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})

	removed := 0
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if os.Remove(dir) == nil {
			removed++
		}
	}
	return removed
}

func (r *Registry) assetIndexPath(brandDir string) string {
	return filepath.Join(brandDir, AssetRegistryFileName)
}

func (r *Registry) loadAssetIndex(brandDir string) (map[string]AssetRecord, error) {
	data, err := os.ReadFile(r.assetIndexPath(brandDir))
	if os.IsNotExist(err) {
		return map[string]AssetRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading asset index: %w", err)
	}
	index := map[string]AssetRecord{}
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing asset index: %w", err)
	}
	return index, nil
}

func (r *Registry) saveAssetIndex(brandDir string, index map[string]AssetRecord) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding asset index: %w", err)
	}
	return writeFileAtomic(r.assetIndexPath(brandDir), data, 0644)
}

func (r *Registry) upsertAssetRecord(brandDir, filename string, record AssetRecord) error {
	index, err := r.loadAssetIndex(brandDir)
	if err != nil {
		return err
	}
	index[filename] = record
	return r.saveAssetIndex(brandDir, index)
}

func (r *Registry) removeAssetRecord(brandDir, filename string) error {
	index, err := r.loadAssetIndex(brandDir)
	if err != nil {
		return err
	}
	if _, ok := index[filename]; !ok {
		return nil
	}
	delete(index, filename)
	return r.saveAssetIndex(brandDir, index)
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func sortedRecordNames(index map[string]AssetRecord) []string {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
