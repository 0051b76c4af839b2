package http1

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"math/bits"
	"strconv"
	"strings"

	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/http/method"
	"github.com/indigo-web/hclient/internal/transport"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/utils/strcomp"
)

const (
	crlf      = "\r\n"
	protocol  = "HTTP/1.1"
	basicAuth = "Basic "
	// minStreamChunkSize is the smallest buffer a body stream is read into.
	minStreamChunkSize = 16
	// maxConsecutiveEmptyReads limits how many times a read of a body stream, returning
	// neither data nor an error, is retried.
	maxConsecutiveEmptyReads = 100
)

var chunkZeroTrailer = []byte("0\r\n\r\n")

var (
	errBadMethod      = fmt.Errorf("%w: method isn't a token", errors.ErrMalformedMessage)
	errBadTarget      = fmt.Errorf("%w: request target contains prohibited characters", errors.ErrMalformedMessage)
	errBadHeaderName  = fmt.Errorf("%w: header field name isn't a token", errors.ErrMalformedMessage)
	errBadHeaderValue = fmt.Errorf("%w: header field value contains CR or LF", errors.ErrMalformedMessage)
	errStreamLength   = fmt.Errorf("%w: Content-Length can't be set for a stream body", errors.ErrHeaderMismatch)
	errStreamCoding   = fmt.Errorf("%w: stream body must be chunked", errors.ErrHeaderMismatch)
	errBufferCoding   = fmt.Errorf("%w: Transfer-Encoding can't be set for a buffered body", errors.ErrHeaderMismatch)
)

// Serializer writes requests. The header block is always written in a single call, as is
// every chunk of a stream body.
type Serializer struct {
	buff []byte
	// chunk holds the space for the longest chunk length and CRLF before the data and
	// another CRLF after it, so every chunk is composed in place.
	chunk     []byte
	maxHexLen int
	logger    *slog.Logger
}

func NewSerializer(cfg *config.Config, logger *slog.Logger) *Serializer {
	chunkSize := cfg.Body.StreamChunkSize
	if chunkSize < minStreamChunkSize {
		logger.Warn(
			"stream chunk size is too small, adjusting",
			slog.Int("configured", chunkSize),
			slog.Int("used", minStreamChunkSize),
		)
		chunkSize = minStreamChunkSize
	}

	maxHexLen := (bits.Len64(uint64(chunkSize))-1)>>2 + 1

	return &Serializer{
		buff:      make([]byte, 0, cfg.Headers.Space.Default),
		chunk:     make([]byte, maxHexLen+len(crlf)+chunkSize+len(crlf)),
		maxHexLen: maxHexLen,
		logger:    logger,
	}
}

// Write validates and writes the request. If the request is invalid, nothing is written.
func (s *Serializer) Write(request *http.Request, w transport.Writer) error {
	headers := request.Headers
	if headers == nil {
		headers = kv.New()
	}

	if err := validate(request, headers); err != nil {
		return err
	}

	if err := s.appendHead(request, headers); err != nil {
		return err
	}

	err := w.Write(s.buff)
	s.buff = s.buff[:0]
	if err != nil {
		return err
	}

	switch body := request.Body; body.Kind() {
	case http.Buffered:
		if len(body.Bytes()) == 0 {
			return nil
		}

		return w.Write(body.Bytes())
	case http.Streamed:
		return s.writeChunked(body.Stream(), w)
	default:
		return nil
	}
}

func (s *Serializer) appendHead(request *http.Request, headers *kv.Storage) error {
	s.buff = append(s.buff, request.Method...)
	s.sp()
	s.appendTarget(request)
	s.sp()
	s.buff = append(s.buff, protocol...)
	s.crlf()

	if !headers.Has("Host") {
		s.appendHeader("Host", request.Authority)
	}

	for key, value := range headers.Pairs() {
		s.appendHeader(key, value)
	}

	if auth := request.BasicAuth; auth != nil && !headers.Has("Authorization") {
		s.appendKnownHeader("Authorization: ", basicAuth+encodeCredentials(auth))
	}

	if err := s.appendFraming(request.Body, headers); err != nil {
		s.buff = s.buff[:0]
		return err
	}

	s.crlf()

	return nil
}

func (s *Serializer) appendTarget(request *http.Request) {
	if len(request.Path) == 0 {
		s.buff = append(s.buff, '/')
	} else {
		s.buff = append(s.buff, request.Path...)
	}

	if len(request.Query) > 0 {
		s.buff = append(s.buff, '?')
		s.buff = append(s.buff, request.Query...)
	}
}

// appendFraming adds either Content-Length or Transfer-Encoding, unless the user already
// did so consistently with the body.
func (s *Serializer) appendFraming(body http.Source, headers *kv.Storage) error {
	switch body.Kind() {
	case http.Buffered:
		if headers.Has("Transfer-Encoding") {
			return errBufferCoding
		}

		length := len(body.Bytes())
		declared := false

		for value := range headers.Values("Content-Length") {
			n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 63)
			if err != nil || n != uint64(length) {
				return fmt.Errorf(
					"%w: Content-Length is %q, but the body is %d bytes long",
					errors.ErrHeaderMismatch, value, length,
				)
			}

			declared = true
		}

		if !declared {
			s.appendContentLength(length)
		}
	case http.Streamed:
		if headers.Has("Content-Length") {
			return errStreamLength
		}

		coding, present := finalCoding(headers)
		switch {
		case !present:
			s.appendKnownHeader("Transfer-Encoding: ", "chunked")
		case !strcomp.EqualFold(coding, "chunked"):
			return errStreamCoding
		}
	}

	return nil
}

// writeChunked reads the stream and writes every non-empty piece as a chunk. Chunk length
// is right-aligned in the reserved space, so the chunk goes out in a single write.
func (s *Serializer) writeChunked(stream io.Reader, w transport.Writer) error {
	var (
		dataOffset = s.maxHexLen + len(crlf)
		data       = s.chunk[dataOffset : len(s.chunk)-len(crlf)]
		emptyReads = 0
	)

	for {
		n, err := stream.Read(data)
		if n > 0 {
			emptyReads = 0
			hexlen := len(strconv.AppendUint(s.chunk[:0], uint64(n), 16))
			offset := s.maxHexLen - hexlen
			copy(s.chunk[offset:], s.chunk[:hexlen])
			copy(s.chunk[s.maxHexLen:], crlf)
			copy(s.chunk[dataOffset+n:], crlf)

			if werr := w.Write(s.chunk[offset : dataOffset+n+len(crlf)]); werr != nil {
				return werr
			}
		}

		switch {
		case err == io.EOF:
			return w.Write(chunkZeroTrailer)
		case err != nil:
			return err
		case n == 0:
			if emptyReads++; emptyReads >= maxConsecutiveEmptyReads {
				return io.ErrNoProgress
			}
		}
	}
}

func (s *Serializer) appendHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, ':', ' ')
	s.buff = append(s.buff, value...)
	s.crlf()
}

// appendKnownHeader differs from appendHeader only by the fact that the key is known to already
// have a colon and a space included.
func (s *Serializer) appendKnownHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) appendContentLength(value int) {
	s.buff = append(s.buff, "Content-Length: "...)
	s.buff = strconv.AppendUint(s.buff, uint64(value), 10)
	s.crlf()
}

func (s *Serializer) sp() {
	s.buff = append(s.buff, ' ')
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, crlf...)
}

func validate(request *http.Request, headers *kv.Storage) error {
	if !request.Method.Valid() {
		return errBadMethod
	}

	if strings.ContainsAny(request.Path, " \r\n") || strings.ContainsAny(request.Query, " \r\n") {
		return errBadTarget
	}

	if strings.ContainsAny(request.Authority, "\r\n") {
		return errBadHeaderValue
	}

	for key, value := range headers.Pairs() {
		if !method.IsToken(key) {
			return errBadHeaderName
		}

		if strings.ContainsAny(value, "\r\n") {
			return errBadHeaderValue
		}
	}

	if auth := request.BasicAuth; auth != nil {
		// the credentials are encoded, however a colon in the username makes them ambiguous
		if strings.IndexByte(auth.Username, ':') != -1 {
			return fmt.Errorf("%w: username contains a colon", errors.ErrMalformedMessage)
		}
	}

	return nil
}

func encodeCredentials(auth *http.BasicAuth) string {
	return base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
}

// finalCoding returns the last transfer coding listed among all the Transfer-Encoding values.
func finalCoding(headers *kv.Storage) (coding string, present bool) {
	for value := range headers.Values("Transfer-Encoding") {
		present = true

		for _, token := range strings.Split(value, ",") {
			if token = strings.TrimSpace(token); len(token) > 0 {
				coding = token
			}
		}
	}

	return coding, present
}
