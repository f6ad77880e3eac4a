package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"brandkit/internal/audit"
	"brandkit/internal/brand"
	"brandkit/internal/config"
	"brandkit/internal/encryption"
	"brandkit/internal/store"
	"brandkit/internal/vault"
)

// App is the application layer between the CLI and the brand registry.
// It constructs all dependencies from config, exposes high-level operations,
// and manages the audit log lifecycle on Close.
type App struct {
	cfg       *config.Config
	registry  *brand.Registry
	templates *brand.TemplateCatalog
	vault     brand.ArchiveVault
	auditLog  brand.AuditLog
	encryptor brand.Encryptor
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Create", "Delete").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	v, err := vault.NewArchiveVaultFromConfig(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}

	auditLog, err := audit.NewAuditLogFromConfig(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("creating audit log: %w", err)
	}

	var encryptor brand.Encryptor
	if cfg.Encryption.Enabled {
		encryptor, err = encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			auditLog.Close()
			return nil, fmt.Errorf("creating encryptor: %w", err)
		}
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		auditLog.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	docs := store.NewYAMLStore()
	clock := brand.RealClock{}

	templates, err := brand.NewTemplateCatalog(cfg.TemplatesRoot, docs, clock, logger)
	if err != nil {
		logFile.Close()
		auditLog.Close()
		return nil, fmt.Errorf("creating template catalog: %w", err)
	}

	logger.Debug("starting operation", "operation", operation)

	backups := brand.NewBackupManager(docs, v, encryptor, clock, logger)

	registry, err := brand.NewRegistry(cfg.BrandsRoot, docs, templates, backups, auditLog, logger, clock, brand.UUIDGenerator{})
	if err != nil {
		logFile.Close()
		auditLog.Close()
		return nil, fmt.Errorf("creating registry: %w", err)
	}

	return &App{
		cfg:       cfg,
		registry:  registry,
		templates: templates,
		vault:     v,
		auditLog:  auditLog,
		encryptor: encryptor,
		logFile:   logFile,
	}, nil
}

// Registry returns the brand registry.
func (a *App) Registry() *brand.Registry { return a.registry }

// Templates returns the template catalog.
func (a *App) Templates() *brand.TemplateCatalog { return a.templates }

// RecentEvents returns the most recent audit events, newest first.
func (a *App) RecentEvents(limit int) ([]brand.Event, error) {
	return a.auditLog.Recent(limit)
}

// ValidateVault verifies that the archive vault is accessible and writable.
func (a *App) ValidateVault() error {
	return a.vault.ValidateSetup()
}

// ReadDocumentFile parses a YAML document from the given path, or from
// stdin when path is "-".
func ReadDocumentFile(path string) (brand.Document, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var doc brand.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	return doc, nil
}

// DecryptArchive unlocks the private key with the passphrase and decrypts
// an encrypted deletion archive to outPath.
func (a *App) DecryptArchive(archivePath, outPath, passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is not enabled")
	}

	ctx, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}

	in, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := ctx.Decrypt(in, out); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("decrypting archive: %w", err)
	}
	return nil
}

// SetupEncryption generates the age key pair protected by the passphrase.
func (a *App) SetupEncryption(passphrase string) error {
	if a.encryptor == nil {
		return fmt.Errorf("encryption is not enabled")
	}
	return a.encryptor.Setup(passphrase)
}

// Close closes the audit log and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.auditLog.Close(); err != nil {
		firstErr = fmt.Errorf("closing audit log: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
