package constants

import "strings"

// FileFormats holds the recognized input formats.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// ImageMIMETypes maps supported image extensions (lowercase, no dot) to their
// MIME types. jpg/tif are folded into their canonical types.
var ImageMIMETypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"gif":  "image/gif",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// AllowedExtensions holds every extension the pipeline accepts, including PDFs.
var AllowedExtensions = func() map[string]struct{} {
	m := map[string]struct{}{"pdf": {}}
	for ext := range ImageMIMETypes {
		m[ext] = struct{}{}
	}
	return m
}()

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to PDF or IMAGE.
// Unknown extensions map to "".
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "pdf" {
		return PDF
	}
	if _, ok := ImageMIMETypes[ext]; ok {
		return IMAGE
	}
	return ""
}

// MIMEForExt returns the MIME type for a supported image extension,
// or application/octet-stream when unknown.
func MIMEForExt(ext string) string {
	if mt, ok := ImageMIMETypes[NormalizeExt(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}
