package http

import (
	"io"

	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

type BodyCallback func([]byte) error

type Retriever interface {
	// Retrieve reads and returns a piece of body available for processing. io.EOF marks
	// the end of the body and may come along with the last piece.
	Retrieve() ([]byte, error)
}

type retriever = Retriever

// Body is a lazily read response body. It can be consumed only once, either as a stream
// (Read, Callback) or at once (Bytes, String, JSON), which is then cached.
type Body struct {
	retriever
	prealloc int
	buff     []byte
	pending  []byte
	error    error
}

func NewBody(impl Retriever, prealloc int) *Body {
	return &Body{
		retriever: impl,
		prealloc:  prealloc,
	}
}

// Callback invokes the callback every time as there's a piece of body available
// for reading. If the callback returns an error, it'll be passed back to the caller.
// The passed slice is valid only until the callback returns.
//
// Please note: this method can be used only once.
func (b *Body) Callback(cb BodyCallback) error {
	if b.error != nil {
		return b.consumedOr(b.error)
	}

	if len(b.pending) > 0 {
		pending := b.pending
		b.pending = nil
		if b.error = cb(pending); b.error != nil {
			return b.error
		}
	}

	for {
		var data []byte
		data, b.error = b.Retrieve()
		switch b.error {
		case nil:
		case io.EOF:
			return cb(data)
		default:
			return b.error
		}

		if b.error = cb(data); b.error != nil {
			return b.error
		}
	}
}

// Bytes returns the whole body at once in a byte representation. The result is cached,
// so consequent calls return the same slice.
func (b *Body) Bytes() ([]byte, error) {
	if b.buff != nil && b.error == io.EOF {
		return b.buff, nil
	}

	if b.error != nil {
		return nil, b.consumedOr(b.error)
	}

	b.buff = make([]byte, 0, b.prealloc)
	b.buff = append(b.buff, b.pending...)
	b.pending = nil

	for {
		var data []byte
		data, b.error = b.Retrieve()
		b.buff = append(b.buff, data...)
		switch b.error {
		case nil:
		case io.EOF:
			return b.buff, nil
		default:
			return nil, b.error
		}
	}
}

// String returns the whole body at once in a string representation.
func (b *Body) String() (string, error) {
	bytes, err := b.Bytes()
	return uf.B2S(bytes), err
}

// JSON decodes the whole body into the model.
func (b *Body) JSON(model any) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}

	iterator := json.ConfigDefault.BorrowIterator(data)
	iterator.ReadVal(model)
	err = iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

// Read implements the io.Reader interface.
func (b *Body) Read(into []byte) (n int, err error) {
	if len(into) == 0 {
		return 0, nil
	}

	for len(b.pending) == 0 && b.error == nil {
		b.pending, b.error = b.Retrieve()
	}

	n = copy(into, b.pending)
	b.pending = b.pending[n:]

	if len(b.pending) == 0 && b.error != nil {
		err = b.error
	}

	return n, err
}

// Discard discards the rest of the body (if any). If no networking error was encountered,
// nil is returned.
func (b *Body) Discard() error {
	b.pending = nil

	for b.error == nil {
		_, b.error = b.Retrieve()
	}

	if b.error == io.EOF {
		return nil
	}

	return b.error
}

// Drained reports whether the body was read till the end or failed.
func (b *Body) Drained() bool {
	return b.error != nil && len(b.pending) == 0
}

// Error returns a previously encountered error, otherwise nil. io.EOF means the body
// was read completely.
func (b *Body) Error() error {
	return b.error
}

func (b *Body) consumedOr(err error) error {
	if err == io.EOF {
		return errors.ErrBodyConsumed
	}

	return err
}
