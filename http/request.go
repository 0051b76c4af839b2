package http

import (
	"bytes"
	"io"
	"strings"

	"github.com/indigo-web/hclient/http/method"
	"github.com/indigo-web/hclient/http/mime"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/hclient/multipart"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

type BasicAuth struct {
	Username, Password string
}

// Request represents an outgoing HTTP request. It is consumed once by the serializer and
// is never modified by it.
type Request struct {
	Method method.Method
	// Authority is host[:port] of the target, used for the Host header if one isn't set.
	Authority string
	// Path is sent as is, therefore must be already escaped. Empty path is sent as /.
	Path string
	// Query is the raw query string without the leading question mark.
	Query     string
	Headers   *kv.Storage
	Body      Source
	BasicAuth *BasicAuth
}

// NewRequest returns a new request with the target split into the path and query.
func NewRequest(m method.Method, authority, target string) *Request {
	path, query, _ := strings.Cut(target, "?")

	return &Request{
		Method:    m,
		Authority: authority,
		Path:      path,
		Query:     query,
		Headers:   kv.New(),
	}
}

// Target returns the request-target as it's written in the request line.
func (r *Request) Target() string {
	path := r.Path
	if len(path) == 0 {
		path = "/"
	}

	if len(r.Query) == 0 {
		return path
	}

	return path + "?" + r.Query
}

// Header appends header values to a key. Existing values are left intact.
func (r *Request) Header(key string, values ...string) *Request {
	for _, value := range values {
		r.Headers.Add(key, value)
	}

	return r
}

// MergeHeaders copies all the pairs into the request headers. Later modifications of
// the passed storage don't affect the request.
func (r *Request) MergeHeaders(headers *kv.Storage) *Request {
	for key, value := range headers.Pairs() {
		r.Headers.Add(key, value)
	}

	return r
}

// Bytes sets the body to the passed slice WITHOUT COPYING. Changing the slice later will
// affect the request by itself.
func (r *Request) Bytes(body []byte) *Request {
	r.Body = FixedBuffer(body)
	return r
}

// String sets the body to the passed string.
func (r *Request) String(body string) *Request {
	return r.Bytes(uf.S2B(body))
}

// Stream sets a body of unknown length, which is going to be sent chunked.
func (r *Request) Stream(body io.Reader) *Request {
	r.Body = StreamSource(body)
	return r
}

// JSON marshals the model and sets it as the body along with the Content-Type.
func (r *Request) JSON(model any) (*Request, error) {
	stream := json.ConfigDefault.BorrowStream(nil)
	defer json.ConfigDefault.ReturnStream(stream)
	stream.WriteVal(model)

	if err := stream.Error; err != nil {
		return r, err
	}

	// the stream's buffer is returned to the pool, therefore must be copied.
	body := append([]byte(nil), stream.Buffer()...)

	return r.contentType(mime.JSON).Bytes(body), nil
}

// Form builds a multipart/form-data body. The writer is closed automatically.
func (r *Request) Form(fill func(w *multipart.Writer) error) (*Request, error) {
	var buff bytes.Buffer
	w := multipart.NewWriter(&buff)

	if err := fill(w); err != nil {
		return r, err
	}

	if err := w.Close(); err != nil {
		return r, err
	}

	return r.contentType(w.FormDataContentType()).Bytes(buff.Bytes()), nil
}

// Auth sets credentials for the basic authentication scheme.
func (r *Request) Auth(username, password string) *Request {
	r.BasicAuth = &BasicAuth{
		Username: username,
		Password: password,
	}

	return r
}

func (r *Request) contentType(value string) *Request {
	r.Headers.Set("Content-Type", value)
	return r
}
