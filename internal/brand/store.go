package brand

// DocumentStore reads and writes configuration documents.
type DocumentStore interface {
	// Load reads the document at path. A missing file is reported with an
	// error wrapping fs-level not-exist; a file that does not parse, or
	// parses to an empty document, wraps ErrValidation.
	Load(path string) (Document, error)

	// Save writes the document to path atomically with respect to readers
	// (temp file in the target directory, then rename). Parent directories
	// are created if absent.
	Save(path string, doc Document) error

	// Exists reports whether a document file is present at path.
	Exists(path string) bool
}
