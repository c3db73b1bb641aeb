package variant

import "errors"

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrTruncated          = errors.New("payload truncated")
	ErrFrameTooLarge      = errors.New("frame exceeds remaining payload")
	ErrTrailingBytes      = errors.New("trailing bytes after payload")
	ErrInvalidDType       = errors.New("invalid tensor data type")
	ErrInvalidShape       = errors.New("invalid tensor shape")
	ErrUnknownTypeName    = errors.New("unknown variant type name")
)
