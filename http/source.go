package http

import (
	"io"
)

type SourceKind uint8

const (
	// NoBody means the request carries no body and no framing headers are added.
	NoBody SourceKind = iota
	// Buffered is a body of known length, sent with Content-Length.
	Buffered
	// Streamed is a body of unknown length, sent chunked.
	Streamed
)

func (k SourceKind) String() string {
	switch k {
	case NoBody:
		return "none"
	case Buffered:
		return "buffer"
	case Streamed:
		return "stream"
	default:
		return "unknown"
	}
}

// Source is the request body. The zero value is no body at all.
type Source struct {
	kind   SourceKind
	buff   []byte
	stream io.Reader
}

// FixedBuffer returns a body consisting of the passed bytes. The slice isn't copied.
func FixedBuffer(b []byte) Source {
	return Source{kind: Buffered, buff: b}
}

// StreamSource returns a body read from r until io.EOF.
func StreamSource(r io.Reader) Source {
	return Source{kind: Streamed, stream: r}
}

func (s Source) Kind() SourceKind {
	return s.kind
}

// Bytes returns the fixed buffer. It's nil for other kinds.
func (s Source) Bytes() []byte {
	return s.buff
}

// Stream returns the stream. It's nil for other kinds.
func (s Source) Stream() io.Reader {
	return s.stream
}
