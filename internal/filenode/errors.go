package filenode

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEntry marks a path that cannot back the requested variant.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrUnsupported marks paths that are neither regular files nor directories.
	ErrUnsupported = errors.New("unsupported file type")
)

// InvalidEntryError is returned when constructing a TextFile or Directory on a
// path that does not qualify. Err holds the stat failure, if any.
type InvalidEntryError struct {
	Path string
	Want Kind
	Err  error
}

func (e *InvalidEntryError) Error() string {
	msg := fmt.Sprintf("path %s does not point to a %s", e.Path, e.Want.noun())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidEntryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidEntry, e.Err}
	}
	return []error{ErrInvalidEntry}
}
