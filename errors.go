package powerlink

import "errors"

var (
	// ErrTruncatedHeader is returned when a buffer is shorter than the
	// 17-byte frame header.
	ErrTruncatedHeader = errors.New("powerlink: truncated frame header")
	// ErrTruncatedBody is returned when a buffer ends inside the fixed
	// fields of the frame variant.
	ErrTruncatedBody = errors.New("powerlink: truncated frame body")
	// ErrPayloadSizeMismatch is returned when a declared payload size
	// exceeds the variant capacity or the bytes actually present.
	ErrPayloadSizeMismatch = errors.New("powerlink: payload size mismatch")
	// ErrPayloadTooLarge is returned when a frame to encode carries more
	// payload than its variant can hold.
	ErrPayloadTooLarge = errors.New("powerlink: payload too large")
	// ErrUnsupportedVariant is returned when a frame to encode has a
	// message type with no known layout, or no body matching its type.
	ErrUnsupportedVariant = errors.New("powerlink: unsupported message type")
)
