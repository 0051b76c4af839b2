package multipart

import (
	"bufio"
	"io"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http/mime"
	"github.com/indigo-web/hclient/kv"
)

const (
	randomBoundaryLen = 24
	maxBoundaryLen    = 70
)

var hexChars = []byte("0123456789abcdef")

type writerState uint8

const (
	eNoPartOpen writerState = iota
	ePartOpen
	eClosed
)

// Writer builds a multipart/form-data body. At most one part is open at a time: creating
// a new part closes the previous one.
type Writer struct {
	w        *bufio.Writer
	boundary string
	state    writerState
	part     *Part
	fixed    bool
}

// NewWriter returns a writer with default settings and a random boundary.
func NewWriter(w io.Writer) *Writer {
	return NewWriterWith(w, config.Default().Multipart)
}

func NewWriterWith(w io.Writer, cfg config.Multipart) *Writer {
	return &Writer{
		w:        bufio.NewWriterSize(w, cfg.WriteBufferSize),
		boundary: cfg.BoundaryPrefix + uniuri.NewLenChars(randomBoundaryLen, hexChars),
		state:    eNoPartOpen,
	}
}

func (w *Writer) Boundary() string {
	return w.boundary
}

// SetBoundary overrides the generated boundary. It must be called before any part
// is created.
func (w *Writer) SetBoundary(boundary string) error {
	switch {
	case w.state == eClosed:
		return errors.ErrWriterClosed
	case w.fixed:
		return errors.ErrBoundaryAlreadyFixed
	case !validBoundary(boundary):
		return errors.ErrInvalidBoundary
	}

	w.boundary = boundary
	return nil
}

// FormDataContentType returns the value of Content-Type header for the body.
func (w *Writer) FormDataContentType() string {
	boundary := w.boundary
	if strings.ContainsAny(boundary, `()<>@,;:"/[]?= `) {
		boundary = `"` + boundary + `"`
	}

	return mime.Multipart + "; boundary=" + boundary
}

// CreatePart closes the currently open part, if any, and opens a new one. Nothing is
// written until the first write into the part.
func (w *Writer) CreatePart(headers *kv.Storage) (*Part, error) {
	if w.state == eClosed {
		return nil, errors.ErrWriterClosed
	}

	w.closePart()
	w.fixed = true
	w.part = &Part{
		w:       w,
		headers: headers.Clone(),
	}
	w.state = ePartOpen

	return w.part, nil
}

// CreateFormField opens a part of a regular form field.
func (w *Writer) CreateFormField(name string) (*Part, error) {
	return w.CreatePart(kv.New().
		Add("Content-Disposition", `form-data; name="`+escapeQuotes(name)+`"`),
	)
}

// CreateFormFile opens a part of a file field. Content-Type is guessed by the file extension.
func (w *Writer) CreateFormFile(field, filename string) (*Part, error) {
	return w.CreatePart(kv.New().
		Add(
			"Content-Disposition",
			`form-data; name="`+escapeQuotes(field)+`"; filename="`+escapeQuotes(filename)+`"`,
		).
		Add("Content-Type", mime.ByFilename(filename)),
	)
}

// WriteField is a shorthand for creating a form field and writing the value into it.
func (w *Writer) WriteField(name, value string) error {
	p, err := w.CreateFormField(name)
	if err != nil {
		return err
	}

	_, err = io.WriteString(p, value)
	return err
}

// WriteFile is a shorthand for creating a file field and copying the content into it.
func (w *Writer) WriteFile(field, filename string, content io.Reader) error {
	p, err := w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}

	// the part must be present even if the content is empty
	if _, err = p.Write(nil); err != nil {
		return err
	}

	_, err = io.Copy(p, content)
	return err
}

// Close closes the open part, writes the closing boundary and flushes everything into
// the underlying writer. The writer is unusable afterwards.
func (w *Writer) Close() error {
	if w.state == eClosed {
		return errors.ErrWriterClosed
	}

	w.closePart()
	w.state = eClosed

	w.w.WriteString("\r\n--")
	w.w.WriteString(w.boundary)
	w.w.WriteString("--\r\n")

	return w.w.Flush()
}

func (w *Writer) closePart() {
	if w.part != nil {
		w.part.closed = true
		w.part = nil
	}

	w.state = eNoPartOpen
}

// Part is a single part of the multipart body.
type Part struct {
	w       *Writer
	headers *kv.Storage
	started bool
	closed  bool
}

// Write writes the data into the part. The first call (even with empty data) emits the
// boundary and the headers of the part.
func (p *Part) Write(data []byte) (n int, err error) {
	if p.closed {
		return 0, errors.ErrPartClosed
	}

	if !p.started {
		p.started = true
		if err = p.writeHeaders(); err != nil {
			return 0, err
		}
	}

	return p.w.w.Write(data)
}

func (p *Part) writeHeaders() error {
	buff := p.w.w
	buff.WriteString("\r\n--")
	buff.WriteString(p.w.boundary)
	buff.WriteString("\r\n")

	for key, value := range p.headers.Pairs() {
		buff.WriteString(key)
		buff.WriteString(": ")
		buff.WriteString(value)
		buff.WriteString("\r\n")
	}

	_, err := buff.WriteString("\r\n")
	return err
}

func validBoundary(boundary string) bool {
	if len(boundary) == 0 || len(boundary) > maxBoundaryLen {
		return false
	}

	last := len(boundary) - 1
	for i := 0; i < last; i++ {
		if c := boundary[i]; c != ' ' && !boundaryChars[c] {
			return false
		}
	}

	return boundaryChars[boundary[last]]
}

var boundaryChars = func() (table [256]bool) {
	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
		table[c-'a'+'A'] = true
	}

	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}

	for _, c := range "'()+_,-./:=?" {
		table[c] = true
	}

	return table
}()

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
