package utils

import (
	"errors"
	"unsafe"
)

func FlattenErrors(errs []error) error {
	switch len(errs) {
	default:
		return errors.Join(errs...)
	case 1:
		return errs[0]
	case 0:
		return nil
	}
}

// Str converts bytes to string without copying.
func Str(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
