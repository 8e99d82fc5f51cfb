// Package normalisers turns imported files into annotatable plain text.
// Each subpackage handles one format; Registry dispatches by MIME type.
package normalisers
