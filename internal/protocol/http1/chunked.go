package http1

import (
	"bytes"
	"fmt"
	"io"

	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/internal/hexconv"
)

type chunkedParserState uint8

const (
	eChunkLength chunkedParserState = iota
	eChunkLengthWS
	eChunkExt
	eChunkLengthCR
	eChunkBody
	eChunkBodyDone
	eChunkBodyCRLF
	eChunkTrailer
	eChunkTrailerCRLF
	eChunkTrailerFieldLine
)

// maxChunkLengthDigits is the number of hex digits fitting into uint64.
const maxChunkLengthDigits = 16

var (
	errChunkLength         = fmt.Errorf("%w: invalid chunk length", errors.ErrMalformedChunk)
	errChunkLengthOverflow = fmt.Errorf("%w: chunk length overflows", errors.ErrMalformedChunk)
	errChunkCRLF           = fmt.Errorf("%w: chunk data isn't followed by CRLF", errors.ErrMalformedChunk)
	errChunkLineTooLong    = fmt.Errorf("%w: chunk line is too long", errors.ErrMalformedChunk)
	errChunkedEOF          = fmt.Errorf("%w: stream ended before the last chunk", errors.ErrMalformedChunk)
)

type chunkedParser struct {
	state         chunkedParserState
	lengthDigits  uint8
	chunkLength   uint64
	lineLength    int
	maxLineLength int
}

func newChunkedParser(maxLineLength int) chunkedParser {
	return chunkedParser{
		state:         eChunkLength,
		maxLineLength: maxLineLength,
	}
}

// Parse returns a piece of chunk data as soon as there's any, along with the unprocessed
// rest of the input. Both may be empty, if the data was entirely consumed by framing. io.EOF
// signals the end of the body, extra holding the bytes following it. The parser resets
// automatically.
func (c *chunkedParser) Parse(data []byte) (chunk, extra []byte, err error) {
	switch c.state {
	case eChunkLength:
		goto chunkLength
	case eChunkLengthWS:
		goto chunkLengthWS
	case eChunkExt:
		goto chunkExt
	case eChunkLengthCR:
		goto chunkLengthCR
	case eChunkBody:
		goto chunkBody
	case eChunkBodyDone:
		goto chunkBodyDone
	case eChunkBodyCRLF:
		goto chunkBodyCRLF
	case eChunkTrailer:
		goto trailer
	case eChunkTrailerCRLF:
		goto chunkTrailerCRLF
	case eChunkTrailerFieldLine:
		goto chunkTrailerFieldLine
	default:
		panic("unreachable code")
	}

chunkLength:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; char {
		case '\r', '\n', ';', ' ', '\t':
			if c.lengthDigits == 0 {
				return nil, nil, errChunkLength
			}

			switch char {
			case '\r':
				data = data[i+1:]
				goto chunkLengthCR
			case '\n':
				data = data[i:]
				goto chunkLengthCR
			case ';':
				data = data[i+1:]
				goto chunkExt
			default:
				data = data[i+1:]
				goto chunkLengthWS
			}
		default:
			val := hexconv.Halfbyte[char]
			if val == 0xFF {
				return nil, nil, errChunkLength
			}

			c.chunkLength = (c.chunkLength << 4) | uint64(val)
			if c.lengthDigits++; c.lengthDigits > maxChunkLengthDigits {
				return nil, nil, errChunkLengthOverflow
			}
		}
	}

	c.state = eChunkLength
	return nil, nil, nil

chunkLengthWS:
	// whitespaces are allowed only before an extension or the line terminator
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t':
		case ';':
			data = data[i+1:]
			goto chunkExt
		case '\r':
			data = data[i+1:]
			goto chunkLengthCR
		case '\n':
			data = data[i:]
			goto chunkLengthCR
		default:
			return nil, nil, errChunkLength
		}
	}

	c.state = eChunkLengthWS
	return nil, nil, nil

chunkExt:
	{
		// extensions are skipped entirely.
		boundary := bytes.IndexByte(data, '\n')
		if boundary == -1 {
			if c.lineLength += len(data); c.lineLength > c.maxLineLength {
				return nil, nil, errChunkLineTooLong
			}

			c.state = eChunkExt
			return nil, nil, nil
		}

		if c.lineLength+boundary > c.maxLineLength {
			return nil, nil, errChunkLineTooLong
		}

		c.lineLength = 0
		data = data[boundary+1:]
		goto chunkLengthDone
	}

chunkLengthCR:
	if len(data) == 0 {
		c.state = eChunkLengthCR
		return nil, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, errChunkLength
	}

	data = data[1:]
	goto chunkLengthDone

chunkLengthDone:
	c.lengthDigits = 0
	if c.chunkLength == 0 {
		goto trailer
	}

	goto chunkBody

chunkBody:
	{
		n := min(c.chunkLength, uint64(len(data)))
		c.chunkLength -= n
		chunk = data[:n]

		if c.chunkLength == 0 {
			c.state = eChunkBodyDone
		} else {
			c.state = eChunkBody
		}

		return chunk, data[n:], nil
	}

chunkBodyDone:
	if len(data) == 0 {
		c.state = eChunkBodyDone
		return nil, nil, nil
	}

	switch data[0] {
	case '\r':
		data = data[1:]
		goto chunkBodyCRLF
	case '\n':
		data = data[1:]
		goto chunkLength
	default:
		return nil, nil, errChunkCRLF
	}

chunkBodyCRLF:
	if len(data) == 0 {
		c.state = eChunkBodyCRLF
		return nil, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, errChunkCRLF
	}

	data = data[1:]
	goto chunkLength

trailer:
	if len(data) == 0 {
		c.state = eChunkTrailer
		return nil, nil, nil
	}

	switch data[0] {
	case '\r':
		data = data[1:]
		goto chunkTrailerCRLF
	case '\n':
		c.state = eChunkLength
		return nil, data[1:], io.EOF
	default:
		// trailer field lines are discarded
		goto chunkTrailerFieldLine
	}

chunkTrailerCRLF:
	if len(data) == 0 {
		c.state = eChunkTrailerCRLF
		return nil, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, errChunkCRLF
	}

	c.state = eChunkLength
	return nil, data[1:], io.EOF

chunkTrailerFieldLine:
	{
		boundary := bytes.IndexByte(data, '\n')
		if boundary == -1 {
			if c.lineLength += len(data); c.lineLength > c.maxLineLength {
				return nil, nil, errChunkLineTooLong
			}

			c.state = eChunkTrailerFieldLine
			return nil, nil, nil
		}

		if c.lineLength+boundary > c.maxLineLength {
			return nil, nil, errChunkLineTooLong
		}

		c.lineLength = 0
		data = data[boundary+1:]
		goto trailer
	}
}
