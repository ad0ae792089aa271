package constants

import (
	"path/filepath"
	"strings"
)

// Source formats used to pick an extraction strategy.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TXT   = "TXT"
	DOC   = "DOC"
)

const (
	MIMEPlainText = "text/plain"
	MIMEPDF       = "application/pdf"
)

// SupportedExtensions holds the default extensions accepted for lease intake.
var SupportedExtensions = []string{"pdf", "txt", "doc", "docx", "png", "jpg", "jpeg", "gif", "bmp", "tiff"}

// MIMETypes maps a normalized extension to its canonical MIME type.
var MIMETypes = map[string]string{
	"pdf":  MIMEPDF,
	"txt":  MIMEPlainText,
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ExtOf returns the normalized extension of a file name.
func ExtOf(name string) string {
	return NormalizeExt(filepath.Ext(name))
}

// MapExtToFormat maps an extension to PDF, IMAGE, TXT or DOC; "" when unknown.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TXT
	case "doc", "docx":
		return DOC
	case "png", "jpg", "jpeg", "gif", "bmp", "tiff", "tif":
		return IMAGE
	default:
		return ""
	}
}

// MIMEForName guesses a MIME type from the file name, falling back to octet-stream.
func MIMEForName(name string) string {
	if mt, ok := MIMETypes[ExtOf(name)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// ExtForMIME returns the first known extension for a MIME type.
func ExtForMIME(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	for _, ext := range SupportedExtensions {
		if MIMETypes[ext] == mt {
			return ext
		}
	}
	return ""
}

// BaseMIME strips parameters such as charset from a MIME type.
func BaseMIME(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}
