package dummy

import (
	"io"

	"github.com/indigo-web/hclient/internal/transport"
)

var _ transport.Client = new(Client)

// Client serves the pieces it was initialised with one by one, then reports io.EOF
// forever. Everything written is accumulated in Written.
type Client struct {
	data    [][]byte
	pending []byte
	pointer int
	err     error
	Written []byte
}

func NewClient(data ...[]byte) *Client {
	return &Client{
		data: data,
		err:  io.EOF,
	}
}

// Chopped splits the data into pieces of at most n bytes each.
func Chopped(data string, n int) *Client {
	var pieces [][]byte

	for len(data) > 0 {
		piece := min(n, len(data))
		pieces = append(pieces, []byte(data[:piece]))
		data = data[piece:]
	}

	return NewClient(pieces...)
}

// Fail makes the client report err instead of io.EOF once the data is exhausted.
func (c *Client) Fail(err error) *Client {
	c.err = err
	return c
}

func (c *Client) Fetch() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.pointer >= len(c.data) {
		return nil, c.err
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(b []byte) {
	c.pending = b
}

func (c *Client) Write(b []byte) error {
	c.Written = append(c.Written, b...)
	return nil
}

// Writer records every write separately, so the amount of flushes can be observed.
type Writer struct {
	Writes [][]byte
}

func (w *Writer) Write(b []byte) error {
	w.Writes = append(w.Writes, append([]byte(nil), b...))
	return nil
}

// Joined returns all the writes as a single string.
func (w *Writer) Joined() string {
	var total []byte
	for _, write := range w.Writes {
		total = append(total, write...)
	}

	return string(total)
}
