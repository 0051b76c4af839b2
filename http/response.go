package http

import (
	"strconv"

	"github.com/indigo-web/hclient/http/status"
	"github.com/indigo-web/hclient/kv"
)

type FramingKind uint8

const (
	// Empty bodies are never read from the wire.
	Empty FramingKind = iota
	// Fixed bodies have exactly Length bytes.
	Fixed
	// Chunked bodies are chunk-encoded.
	Chunked
	// UntilClose bodies last until the stream ends.
	UntilClose
)

// Framing describes how the end of a response body is determined.
type Framing struct {
	Kind   FramingKind
	Length int64
}

// FixedLength returns the framing of a body with known length.
func FixedLength(n int64) Framing {
	return Framing{Kind: Fixed, Length: n}
}

func (f Framing) String() string {
	switch f.Kind {
	case Empty:
		return "empty"
	case Fixed:
		return "fixed(" + strconv.FormatInt(f.Length, 10) + ")"
	case Chunked:
		return "chunked"
	case UntilClose:
		return "until-close"
	default:
		return "unknown"
	}
}

// Response is a parsed response. Headers are immutable and backed by the memory of
// the response itself, therefore must be copied if they have to outlive it.
type Response struct {
	// Protocol is the version token of the status line, possibly empty.
	Protocol string
	Code     status.Code
	Reason   string
	Headers  *kv.Storage
	Framing  Framing
	Body     *Body
}

// ContentLength returns the declared length of the body, or -1 if it isn't known.
func (r *Response) ContentLength() int64 {
	switch r.Framing.Kind {
	case Empty:
		return 0
	case Fixed:
		return r.Framing.Length
	default:
		return -1
	}
}
