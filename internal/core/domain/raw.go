package domain

// RawFile is a file handed to the importer before its text is extracted.
type RawFile struct {
	// Filename is the base name stored on the resulting text.
	Filename string

	// MIMEType is the content type, e.g. "text/markdown". Empty means unknown.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// ImportFailure records a file that could not be turned into a text.
type ImportFailure struct {
	Filename string
	Err      error
}

// ImportResult is the outcome of importing files into a dataset.
type ImportResult struct {
	// Imported holds the created texts in input order.
	Imported []Text

	// Failed lists files whose content could not be extracted.
	Failed []ImportFailure
}
