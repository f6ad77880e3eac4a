package brand

import "io"

// ArchiveVault stores deletion archives: one compressed tarball per deleted
// brand. Backends stream the archive without loading it into memory.
type ArchiveVault interface {
	// PutArchive stores an archive under the given name and returns its
	// final location (a filesystem path or an object URI). size is the
	// number of bytes that will be read from r.
	PutArchive(name string, r io.Reader, size int64) (string, error)

	// ValidateSetup verifies that the vault is accessible and writable.
	ValidateSetup() error
}
