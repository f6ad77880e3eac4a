package brand

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const backupTimestampFormat = "20060102_150405"

// BackupManager snapshots brand documents before updates and archives whole
// brand directories before deletion. Snapshots land under the brand's
// backups/ subdirectory; archives are handed to the ArchiveVault. Neither is
// ever pruned automatically.
type BackupManager struct {
	store     DocumentStore
	vault     ArchiveVault
	encryptor Encryptor // nil when archive encryption is disabled
	clock     Clock
	logger    Logger
}

// NewBackupManager creates a BackupManager. encryptor may be nil, in which
// case archives are stored in plaintext.
func NewBackupManager(store DocumentStore, vault ArchiveVault, encryptor Encryptor, clock Clock, logger Logger) *BackupManager {
	return &BackupManager{
		store:     store,
		vault:     vault,
		encryptor: encryptor,
		clock:     clock,
		logger:    logger,
	}
}

// Snapshot writes a timestamped copy of a document into brandDir/backups and
// returns the backup path. Timestamps have one-second granularity; a
// same-second collision gets a numeric suffix so no snapshot is overwritten.
func (b *BackupManager) Snapshot(brandDir string, doc Document) (string, error) {
	backupsDir := filepath.Join(brandDir, "backups")
	ts := b.clock.Now().Format(backupTimestampFormat)

	path := filepath.Join(backupsDir, fmt.Sprintf("backup_%s.yaml", ts))
	for n := 1; b.store.Exists(path); n++ {
		path = filepath.Join(backupsDir, fmt.Sprintf("backup_%s_%d.yaml", ts, n))
	}

	if err := b.store.Save(path, doc); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	b.logger.Debug("snapshot created", "path", path)
	return path, nil
}

// Archive produces a compressed tarball of the entire brand directory and
// stores it in the vault as <name>_deleted_<timestamp>.tar.gz, with an .age
// suffix when archive encryption is configured. Returns the archive's final
// location.
func (b *BackupManager) Archive(brandName, brandDir string) (string, error) {
	tmp, err := os.CreateTemp("", "brandkit-archive-*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("creating temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeTarball(tmp, brandDir, brandName); err != nil {
		tmp.Close()
		return "", fmt.Errorf("archiving %s: %w", brandDir, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp archive: %w", err)
	}

	ts := b.clock.Now().Format(backupTimestampFormat)
	name := fmt.Sprintf("%s_deleted_%s.tar.gz", brandName, ts)

	uploadPath := tmpPath
	if b.encryptor != nil && b.encryptor.IsConfigured() {
		encPath, err := b.encryptArchive(tmpPath)
		if err != nil {
			return "", err
		}
		defer os.Remove(encPath)
		uploadPath = encPath
		name += ".age"
	}

	f, err := os.Open(uploadPath)
	if err != nil {
		return "", fmt.Errorf("opening archive for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}

	location, err := b.vault.PutArchive(name, f, info.Size())
	if err != nil {
		return "", fmt.Errorf("storing archive: %w", err)
	}

	b.logger.Info("brand archived", "brand", brandName, "archive", location)
	return location, nil
}

// encryptArchive encrypts the tarball at path into a sibling temp file and
// returns the ciphertext path.
func (b *BackupManager) encryptArchive(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening archive for encryption: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "brandkit-archive-*.tar.gz.age")
	if err != nil {
		return "", fmt.Errorf("creating encrypted archive: %w", err)
	}
	dstPath := dst.Name()

	if err := b.encryptor.Encrypt(src, dst); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("encrypting archive: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("closing encrypted archive: %w", err)
	}
	return dstPath, nil
}

// writeTarball writes a gzip-compressed tar of dir to w. Entries are rooted
// at arcname so extraction recreates the brand directory by name.
func writeTarball(w io.Writer, dir, arcname string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.Join(arcname, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(name)
		if d.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}
	return nil
}
