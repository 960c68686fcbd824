package constants

import "strings"

// IsPdfFilename reports whether a filename looks like a PDF attachment.
// Matching is by extension only; content sniffing is left to the extractor.
func IsPdfFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
