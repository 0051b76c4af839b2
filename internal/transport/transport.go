package transport

import (
	"io"
)

// maxConsecutiveEmptyReads limits how many times a read returning neither data nor
// an error is retried before giving up with io.ErrNoProgress.
const maxConsecutiveEmptyReads = 100

type Writer interface {
	// Write transmits the whole slice or fails.
	Write([]byte) error
}

// Client is a buffered duplex byte stream. Data returned by Fetch is valid until the next
// Fetch call, so whatever must survive it has to be copied.
type Client interface {
	Writer
	// Fetch returns the data preserved via Pushback, if any, or reads a new piece. An
	// error is sticky: once returned, it's returned by every following call.
	Fetch() ([]byte, error)
	// Pushback preserves the unconsumed tail of the recently fetched data for the
	// next Fetch.
	Pushback([]byte)
}

type client struct {
	conn    io.ReadWriter
	buff    []byte
	pending []byte
	err     error
}

func NewClient(conn io.ReadWriter, buff []byte) Client {
	return &client{
		conn: conn,
		buff: buff,
	}
}

func (c *client) Fetch() ([]byte, error) {
	if len(c.pending) > 0 {
		pending := c.pending
		c.pending = nil

		return pending, nil
	}

	if c.err != nil {
		return nil, c.err
	}

	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := c.conn.Read(c.buff)
		c.err = err

		switch {
		case n > 0:
			// the error (if any) is going to be reported on the next call
			return c.buff[:n], nil
		case err != nil:
			return nil, err
		}
	}

	c.err = io.ErrNoProgress
	return nil, c.err
}

func (c *client) Pushback(b []byte) {
	c.pending = b
}

func (c *client) Write(b []byte) error {
	for len(b) > 0 {
		n, err := c.conn.Write(b)
		if err != nil {
			return err
		}

		if n == 0 {
			return io.ErrShortWrite
		}

		b = b[n:]
	}

	return nil
}
