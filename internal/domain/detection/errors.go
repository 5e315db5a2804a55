package detection

import "errors"

var (
	ErrSessionNotFound = errors.New("detection session not found")
	ErrUnknownDisease  = errors.New("unknown disease category")
	ErrPreviewNotFound = errors.New("preview not found")
	// ErrUploadTooLarge is returned by the transport when the body exceeds the configured limit.
	ErrUploadTooLarge = errors.New("upload too large")
)
