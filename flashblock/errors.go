package flashblock

import (
	"errors"
	"fmt"

	ssz "github.com/ferranbt/fastssz"
)

var (
	// ErrDecode is wrapped by every error returned from UnmarshalSSZ.
	ErrDecode = errors.New("invalid ssz encoding")

	errDuplicateKey          = errors.New("duplicate map key")
	errInvalidUnionSelector  = errors.New("invalid union selector")
	errInvalidReceiptPayload = errors.New("invalid receipt payload")
	errNilEntry              = errors.New("nil entry can not be encoded")
)

func errFixedSize(container string, expected, actual int) error {
	return fmt.Errorf("%w: %s: %w: expected %d bytes, got %d",
		ErrDecode, container, ssz.ErrSize, expected, actual,
	)
}

func errMinSize(container string, expected, actual int) error {
	return fmt.Errorf("%w: %s: %w: expected at least %d bytes, got %d",
		ErrDecode, container, ssz.ErrSize, expected, actual,
	)
}

func errOffset(container string, at int, offset, lower, upper uint64) error {
	return fmt.Errorf("%w: %s: %w: offset %d at position %d is outside of [%d, %d]",
		ErrDecode, container, ssz.ErrOffset, offset, at, lower, upper,
	)
}

func errStride(container string, stride, actual int) error {
	return fmt.Errorf("%w: %s: %w: length %d is not a multiple of %d (remainder %d)",
		ErrDecode, container, ssz.ErrBytesLength, actual, stride, actual%stride,
	)
}

func fmtDecode(container string, cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w: %s",
		ErrDecode, container, cause, fmt.Sprintf(format, args...),
	)
}

func fmtWrap(container string, idx int, err error) error {
	return fmt.Errorf("%s[%d]: %w",
		container, idx, err,
	)
}
