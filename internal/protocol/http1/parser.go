package http1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/http/method"
	"github.com/indigo-web/hclient/http/status"
	"github.com/indigo-web/hclient/internal/buffer"
	"github.com/indigo-web/hclient/internal/transport"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

var (
	errStatusCode     = fmt.Errorf("%w: status code must consist of 3 digits", errors.ErrMalformedStatusLine)
	errStatusRange    = fmt.Errorf("%w: status code is out of range", errors.ErrMalformedStatusLine)
	errNoReason       = fmt.Errorf("%w: reason phrase is missing", errors.ErrMalformedStatusLine)
	errNoCodeSP       = fmt.Errorf("%w: status line must have a space before the code", errors.ErrMalformedStatusLine)
	errContentLength  = fmt.Errorf("%w: invalid Content-Length", errors.ErrMalformedMessage)
	errLengthConflict = fmt.Errorf("%w: conflicting Content-Length values", errors.ErrMalformedMessage)
)

// Parser reads responses from the client. Every response owns its memory, so a parsed
// response stays intact after the next one is parsed. However, the body of a response
// must be drained before the next one is read, as they share the stream.
type Parser struct {
	cfg    *config.Config
	client transport.Client
}

func NewParser(cfg *config.Config, client transport.Client) *Parser {
	return &Parser{
		cfg:    cfg,
		client: client,
	}
}

// Parse reads the status line and the header block, attaching a lazily read body to the
// response. The method of the request is needed, as responses to HEAD never have a body.
func (p *Parser) Parse(m method.Method) (*http.Response, error) {
	cfg := p.cfg
	arena := buffer.New(
		cfg.StatusLine.MaxSize+cfg.Headers.Space.Default,
		cfg.StatusLine.MaxSize+cfg.Headers.Space.Maximal,
	)
	scanner := NewScanner(p.client, arena)

	line, err := scanner.Line(cfg.StatusLine.MaxSize)
	if err != nil {
		return nil, err
	}

	response, err := parseStatusLine(line)
	if err != nil {
		return nil, err
	}

	response.Headers = kv.NewPrealloc(cfg.Headers.Number.Default)
	err = scanner.Headers(response.Headers, cfg.Headers.Number.Maximal, cfg.Headers.Space.Maximal)
	if err != nil {
		return nil, err
	}

	response.Framing, err = framing(m, response.Code, response.Headers)
	if err != nil {
		return nil, err
	}

	decoder := newDecoder(p.client, response.Framing, cfg.Body.ChunkLineSize)
	response.Body = http.NewBody(decoder, cfg.Body.BufferPrealloc)

	return response, nil
}

// parseStatusLine parses the line in form of [HTTP-version] SP 3DIGIT SP reason-phrase.
func parseStatusLine(line []byte) (*http.Response, error) {
	str := uf.B2S(line)
	sp := strings.IndexByte(str, ' ')
	if sp == -1 {
		return nil, errNoCodeSP
	}

	protocol, rest := str[:sp], str[sp+1:]
	if len(rest) < 3 {
		return nil, errStatusCode
	}

	var code status.Code
	for i := 0; i < 3; i++ {
		char := rest[i]
		if char < '0' || char > '9' {
			return nil, errStatusCode
		}

		code = code*10 + status.Code(char-'0')
	}

	if !code.Valid() {
		return nil, errStatusRange
	}

	rest = rest[3:]
	if len(rest) < 2 || rest[0] != ' ' {
		// either there's no reason at all, or the code is longer than 3 digits
		if len(rest) > 0 && rest[0] != ' ' {
			return nil, errStatusCode
		}

		return nil, errNoReason
	}

	return &http.Response{
		Protocol: protocol,
		Code:     code,
		Reason:   rest[1:],
	}, nil
}

// framing decides, how the end of the body is determined.
func framing(m method.Method, code status.Code, headers *kv.Storage) (http.Framing, error) {
	if m == method.HEAD || !code.AllowsBody() {
		return http.Framing{Kind: http.Empty}, nil
	}

	if coding, present := finalCoding(headers); present {
		if strcomp.EqualFold(coding, "chunked") {
			return http.Framing{Kind: http.Chunked}, nil
		}

		// the body is encoded in an unknown way, so only closing the connection
		// can signalize its end.
		return http.Framing{Kind: http.UntilClose}, nil
	}

	length, present, err := contentLength(headers)
	switch {
	case err != nil:
		return http.Framing{}, err
	case present:
		return http.FixedLength(length), nil
	default:
		return http.Framing{Kind: http.UntilClose}, nil
	}
}

// contentLength returns the value of Content-Length. Multiple values, both in form of
// separate fields and comma-separated lists, are allowed as long as they are all equal.
func contentLength(headers *kv.Storage) (length int64, present bool, err error) {
	for value := range headers.Values("Content-Length") {
		for _, token := range strings.Split(value, ",") {
			n, err := parseLength(strings.TrimSpace(token))
			if err != nil {
				return 0, false, err
			}

			if present && n != length {
				return 0, false, errLengthConflict
			}

			length, present = n, true
		}
	}

	return length, present, nil
}

func parseLength(value string) (int64, error) {
	if len(value) == 0 {
		return 0, errContentLength
	}

	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return 0, errContentLength
		}
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errContentLength
	}

	return n, nil
}
