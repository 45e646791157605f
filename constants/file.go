package constants

import "strings"

// AllowedExtensions holds the file extensions accepted for statement uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// AllowedMIMETypes holds the content types accepted for statement uploads.
var AllowedMIMETypes = map[string]struct{}{
	"application/pdf": {},
}

// PDFMagic is the byte signature every PDF file starts with.
var PDFMagic = []byte("%PDF")

// MaxFileSizeMBDefault caps uploaded statement files.
const MaxFileSizeMBDefault = 10

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
