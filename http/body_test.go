package http

import (
	"io"
	"testing"

	"github.com/indigo-web/hclient/errors"
	"github.com/stretchr/testify/require"
)

// pieces is a Retriever serving the pieces one by one, the last one along with io.EOF.
type pieces struct {
	data [][]byte
	err  error
}

func newPieces(data ...string) *pieces {
	p := &pieces{err: io.EOF}
	for _, piece := range data {
		p.data = append(p.data, []byte(piece))
	}

	return p
}

func (p *pieces) Retrieve() ([]byte, error) {
	switch len(p.data) {
	case 0:
		return nil, p.err
	case 1:
		piece := p.data[0]
		p.data = nil
		return piece, p.err
	default:
		piece := p.data[0]
		p.data = p.data[1:]
		return piece, nil
	}
}

func TestBody(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		body := NewBody(newPieces("Hello, ", "world", "!"), 16)
		data, err := body.Bytes()
		require.NoError(t, err)
		require.Equal(t, "Hello, world!", string(data))

		cached, err := body.Bytes()
		require.NoError(t, err)
		require.Equal(t, "Hello, world!", string(cached))
	})

	t.Run("read", func(t *testing.T) {
		body := NewBody(newPieces("Hello, ", "world", "!"), 0)
		buff := make([]byte, 3)
		var data []byte

		for {
			n, err := body.Read(buff)
			data = append(data, buff[:n]...)
			if err == io.EOF {
				break
			}

			require.NoError(t, err)
		}

		require.Equal(t, "Hello, world!", string(data))
		require.True(t, body.Drained())
	})

	t.Run("bytes after read", func(t *testing.T) {
		body := NewBody(newPieces("Hello"), 0)
		_, err := io.ReadAll(body)
		require.NoError(t, err)

		_, err = body.Bytes()
		require.ErrorIs(t, err, errors.ErrBodyConsumed)
	})

	t.Run("rest after a partial read", func(t *testing.T) {
		body := NewBody(newPieces("Hello, ", "world!"), 0)
		buff := make([]byte, 4)
		n, err := body.Read(buff)
		require.NoError(t, err)
		require.Equal(t, "Hell", string(buff[:n]))

		rest, err := body.String()
		require.NoError(t, err)
		require.Equal(t, "o, world!", rest)
	})

	t.Run("callback", func(t *testing.T) {
		body := NewBody(newPieces("a", "b", "c"), 0)
		var got []string
		err := body.Callback(func(b []byte) error {
			got = append(got, string(b))
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, got)
		require.ErrorIs(t, body.Callback(func([]byte) error { return nil }), errors.ErrBodyConsumed)
	})

	t.Run("callback error", func(t *testing.T) {
		body := NewBody(newPieces("a", "b"), 0)
		err := body.Callback(func([]byte) error {
			return io.ErrShortBuffer
		})
		require.ErrorIs(t, err, io.ErrShortBuffer)
	})

	t.Run("JSON", func(t *testing.T) {
		body := NewBody(newPieces(`{"name": "Pavlo", `, `"age": 21}`), 0)
		var model struct {
			Name string `json:"name"`
			Age  int    `json:"age"`
		}
		require.NoError(t, body.JSON(&model))
		require.Equal(t, "Pavlo", model.Name)
		require.Equal(t, 21, model.Age)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		var model map[string]any
		require.Error(t, NewBody(newPieces(`{"name": `), 0).JSON(&model))
	})

	t.Run("sticky error", func(t *testing.T) {
		p := newPieces("partial")
		p.err = errors.ErrTruncatedBody
		body := NewBody(p, 0)

		_, err := body.Bytes()
		require.ErrorIs(t, err, errors.ErrTruncatedBody)
		_, err = body.Bytes()
		require.ErrorIs(t, err, errors.ErrTruncatedBody)
		require.ErrorIs(t, body.Discard(), errors.ErrTruncatedBody)
		require.ErrorIs(t, body.Error(), errors.ErrTruncatedBody)
	})

	t.Run("discard", func(t *testing.T) {
		body := NewBody(newPieces("a", "b", "c"), 0)
		require.False(t, body.Drained())
		require.NoError(t, body.Discard())
		require.True(t, body.Drained())
		require.NoError(t, body.Discard())
	})
}
