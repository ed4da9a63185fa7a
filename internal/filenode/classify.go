package filenode

import (
	"errors"
	"io"
)

// DefaultSniffLength is the number of leading bytes inspected when the MIME
// type alone does not mark a file as text.
const DefaultSniffLength = 1024

// IsText reports whether path is a regular file that classifies as text.
// Missing, unreadable and non-regular paths report false.
func (t *Tree) IsText(path string) bool {
	info, err := t.fs.Stat(path)
	if err != nil {
		t.loggerOrDefault().Debug("Classification stat failed", "path", path, "error", err)
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}
	return t.isTextFile(path)
}

// isTextFile applies the MIME check and the content fallback to a path already
// known to be a regular file.
func (t *Tree) isTextFile(path string) bool {
	if typ, ok := t.mime.TypeByName(path); ok && isTextType(typ) {
		return true
	}

	text, err := t.sniffText(path)
	if err != nil {
		t.loggerOrDefault().Debug("Classification read failed", "path", path, "error", err)
		return false
	}
	return text
}

func (t *Tree) sniffText(path string) (bool, error) {
	f, err := t.fs.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, t.sniffLength)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return IsTextContent(buf[:n]), nil
}

// IsTextContent reports whether every byte of p is printable ASCII (32-127)
// or one of the control bytes 9, 10 and 13. An empty slice is text.
func IsTextContent(p []byte) bool {
	for _, b := range p {
		if b >= 32 && b <= 127 {
			continue
		}
		switch b {
		case '\t', '\n', '\r':
			continue
		}
		return false
	}
	return true
}
