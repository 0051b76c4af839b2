package errors

import (
	"errors"
)

var (
	ErrMalformedMessage    = errors.New("malformed message")
	ErrMalformedStatusLine = errors.New("malformed status line")
	ErrMalformedChunk      = errors.New("malformed chunk-encoded data")
	ErrTruncatedBody       = errors.New("stream ended before the declared body length was satisfied")
	ErrHeaderMismatch      = errors.New("declared body length conflicts with the actual one")

	ErrTooLarge             = errors.New("too large")
	ErrHeaderFieldsTooLarge = errors.New("header fields too large")
	ErrTooManyHeaders       = errors.New("too many headers")

	ErrInvalidBoundary      = errors.New("invalid multipart boundary")
	ErrBoundaryAlreadyFixed = errors.New("boundary can't be changed after a part was created")
	ErrPartClosed           = errors.New("multipart part is closed")
	ErrWriterClosed         = errors.New("multipart writer is closed")

	ErrBodyConsumed = errors.New("body has been already read")
)
