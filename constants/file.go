package constants

import "strings"

// ImageExtensions holds the receipt image formats accepted for scanning.
var ImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether a normalized extension is a supported image format.
func IsImageExt(ext string) bool {
	_, ok := ImageExtensions[ext]
	return ok
}
