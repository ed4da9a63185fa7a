package filenode

import (
	"mime"
	"path/filepath"
	"strings"
)

// MimeResolver maps a file name to a MIME type without touching the file.
type MimeResolver interface {
	TypeByName(name string) (string, bool)
}

// builtinTypes follows the conventional extension mapping used by most
// platforms' mime.types files. Only the entries that matter for text detection
// are listed; anything missing falls through to mime.TypeByExtension.
var builtinTypes = map[string]string{
	".bat":      "text/plain",
	".c":        "text/plain",
	".css":      "text/css",
	".csv":      "text/csv",
	".etx":      "text/x-setext",
	".h":        "text/plain",
	".htm":      "text/html",
	".html":     "text/html",
	".ics":      "text/calendar",
	".js":       "text/javascript",
	".ksh":      "text/plain",
	".markdown": "text/markdown",
	".md":       "text/markdown",
	".mjs":      "text/javascript",
	".n3":       "text/n3",
	".pl":       "text/plain",
	".py":       "text/x-python",
	".rtx":      "text/richtext",
	".sgm":      "text/x-sgml",
	".sgml":     "text/x-sgml",
	".srt":      "text/plain",
	".tsv":      "text/tab-separated-values",
	".txt":      "text/plain",
	".vcf":      "text/x-vcard",
	".vtt":      "text/vtt",
	".xml":      "text/xml",

	".a":     "application/octet-stream",
	".bin":   "application/octet-stream",
	".dll":   "application/octet-stream",
	".exe":   "application/octet-stream",
	".gif":   "image/gif",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".json":  "application/json",
	".o":     "application/octet-stream",
	".obj":   "application/octet-stream",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".so":    "application/octet-stream",
	".svg":   "image/svg+xml",
	".tar":   "application/x-tar",
	".wasm":  "application/wasm",
	".webp":  "image/webp",
	".xhtml": "application/xhtml+xml",
	".zip":   "application/zip",
}

// encodingSuffixes are compression suffixes that describe an encoding rather
// than a type; "notes.txt.gz" resolves like "notes.txt".
var encodingSuffixes = map[string]struct{}{
	".gz":  {},
	".Z":   {},
	".bz2": {},
	".xz":  {},
	".br":  {},
}

// ExtensionTable is the default MimeResolver. Lookups try the exact extension,
// then its lower-case form, against the overrides, the built-in table and
// finally the platform table from the mime package.
type ExtensionTable struct {
	overrides map[string]string
}

// NewExtensionTable builds a table with optional extension overrides. Keys are
// accepted with or without the leading dot.
func NewExtensionTable(overrides map[string]string) *ExtensionTable {
	table := &ExtensionTable{overrides: make(map[string]string, len(overrides))}
	for ext, typ := range overrides {
		ext = strings.TrimSpace(ext)
		typ = strings.TrimSpace(typ)
		if ext == "" || typ == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		table.overrides[ext] = typ
	}
	return table
}

// TypeByName satisfies MimeResolver.
func (t *ExtensionTable) TypeByName(name string) (string, bool) {
	base, ext := splitExtension(filepath.Base(name))
	if isEncodingSuffix(ext) {
		_, ext = splitExtension(base)
	}
	if ext == "" {
		return "", false
	}
	if typ, ok := t.lookup(ext); ok {
		return typ, true
	}
	if lower := strings.ToLower(ext); lower != ext {
		if typ, ok := t.lookup(lower); ok {
			return typ, true
		}
	}
	if typ := mime.TypeByExtension(ext); typ != "" {
		return typ, true
	}
	return "", false
}

func (t *ExtensionTable) lookup(ext string) (string, bool) {
	if typ, ok := t.overrides[ext]; ok {
		return typ, true
	}
	typ, ok := builtinTypes[ext]
	return typ, ok
}

func isEncodingSuffix(ext string) bool {
	if _, ok := encodingSuffixes[ext]; ok {
		return true
	}
	_, ok := encodingSuffixes[strings.ToLower(ext)]
	return ok
}

// splitExtension splits name into base and extension. Leading dots belong to
// the base, so ".profile" has no extension.
func splitExtension(name string) (string, string) {
	trimmed := strings.TrimLeft(name, ".")
	ext := filepath.Ext(trimmed)
	if ext == "" || ext == "." {
		return name, ""
	}
	return name[:len(name)-len(ext)], ext
}

func isTextType(typ string) bool {
	mediaType, _, err := mime.ParseMediaType(typ)
	if err != nil {
		mediaType = typ
	}
	major, _, _ := strings.Cut(strings.ToLower(mediaType), "/")
	return major == "text"
}
