package http1

import (
	"bytes"
	"fmt"
	"io"

	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/internal/buffer"
	"github.com/indigo-web/hclient/internal/transport"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/utils/uf"
)

var (
	errHeadersUnterminated = fmt.Errorf("%w: header block isn't terminated", errors.ErrMalformedMessage)
	errNoColon             = fmt.Errorf("%w: header field without a colon", errors.ErrMalformedMessage)
	errEmptyFieldName      = fmt.Errorf("%w: empty header field name", errors.ErrMalformedMessage)
	errWhitespaceInName    = fmt.Errorf("%w: whitespace in header field name", errors.ErrMalformedMessage)
	errDanglingFolding     = fmt.Errorf("%w: continuation line without a field", errors.ErrMalformedMessage)
)

// Scanner reads lines and header blocks. Returned lines and header fields are stored in the
// buffer, so they remain valid until the buffer is cleared.
type Scanner struct {
	client transport.Client
	buff   *buffer.Buffer
}

func NewScanner(client transport.Client, buff *buffer.Buffer) *Scanner {
	return &Scanner{
		client: client,
		buff:   buff,
	}
}

// Line returns the next line with its terminator (LF, optionally preceded by CR) stripped.
// Lines longer than limit result in errors.ErrTooLarge. If the stream ends before the
// terminator, io.ErrUnexpectedEOF is returned.
func (s *Scanner) Line(limit int) ([]byte, error) {
	// one more byte for a possible CR
	limit++

	for {
		data, err := s.client.Fetch()
		if err != nil {
			s.buff.Finish()
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, err
		}

		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if s.buff.SegmentLength()+len(data) > limit || !s.buff.Append(data) {
				s.buff.Finish()
				return nil, errors.ErrTooLarge
			}

			continue
		}

		if s.buff.SegmentLength()+lf > limit || !s.buff.Append(data[:lf]) {
			s.buff.Finish()
			return nil, errors.ErrTooLarge
		}

		s.client.Pushback(data[lf+1:])
		line := stripCR(s.buff.Finish())
		if len(line) == limit {
			// the extra byte was not a CR
			return nil, errors.ErrTooLarge
		}

		return line, nil
	}
}

// Headers reads header field lines until an empty one. Continuation lines are folded into
// the previous value, separated by a single space. Number and space limit the count of fields
// and the total length of field lines respectively.
func (s *Scanner) Headers(into *kv.Storage, number, space int) error {
	fields := 0

	for {
		line, err := s.Line(space)
		switch err {
		case nil:
		case errors.ErrTooLarge:
			return errors.ErrHeaderFieldsTooLarge
		case io.ErrUnexpectedEOF:
			return errHeadersUnterminated
		default:
			return err
		}

		if len(line) == 0 {
			return nil
		}

		space -= len(line)

		if line[0] == ' ' || line[0] == '\t' {
			if fields == 0 {
				return errDanglingFolding
			}

			fold(into, trimSpaces(line))
			continue
		}

		colon := bytes.IndexByte(line, ':')
		switch {
		case colon == -1:
			return errNoColon
		case colon == 0:
			return errEmptyFieldName
		case bytes.ContainsAny(line[:colon], " \t"):
			return errWhitespaceInName
		}

		if fields++; fields > number {
			return errors.ErrTooManyHeaders
		}

		into.Add(uf.B2S(line[:colon]), uf.B2S(trimSpaces(line[colon+1:])))
	}
}

// fold appends a continuation to the value of the recently added pair.
func fold(into *kv.Storage, continuation []byte) {
	pairs := into.Expose()
	last := &pairs[len(pairs)-1]

	switch {
	case len(continuation) == 0:
	case len(last.Value) == 0:
		last.Value = string(continuation)
	default:
		last.Value = last.Value + " " + string(continuation)
	}
}

func trimSpaces(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}

	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}

	return b
}

func stripCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}

	return b
}
