package http1

import (
	"fmt"
	"io"

	"github.com/indigo-web/hclient/errors"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/internal/transport"
)

var (
	_ http.Retriever = new(plainBody)
	_ http.Retriever = new(chunkedBody)
	_ http.Retriever = new(untilCloseBody)
	_ http.Retriever = emptyBody{}
)

// newDecoder returns a body decoder corresponding to the framing.
func newDecoder(client transport.Client, framing http.Framing, maxChunkLine int) http.Retriever {
	switch framing.Kind {
	case http.Fixed:
		return newPlainBody(client, framing.Length)
	case http.Chunked:
		return newChunkedBody(client, maxChunkLine)
	case http.UntilClose:
		return &untilCloseBody{client: client}
	default:
		return emptyBody{}
	}
}

// plainBody reads exactly the declared number of bytes.
type plainBody struct {
	client transport.Client
	left   int64
	err    error
}

func newPlainBody(client transport.Client, length int64) *plainBody {
	return &plainBody{
		client: client,
		left:   length,
	}
}

func (p *plainBody) Retrieve() (body []byte, err error) {
	if p.err != nil {
		return nil, p.err
	}

	if p.left == 0 {
		return nil, io.EOF
	}

	data, err := p.client.Fetch()
	if err != nil {
		if err == io.EOF {
			err = fmt.Errorf("%w: %d bytes are missing", errors.ErrTruncatedBody, p.left)
		}

		p.err = err
		return nil, err
	}

	if dataLen := int64(len(data)); dataLen >= p.left {
		body, data = data[:p.left], data[p.left:]
		p.client.Pushback(data)
		p.left = 0
		err = io.EOF
	} else {
		p.left -= dataLen
		body = data
	}

	return body, err
}

type chunkedBody struct {
	client transport.Client
	parser chunkedParser
	done   bool
	err    error
}

func newChunkedBody(client transport.Client, maxLine int) *chunkedBody {
	return &chunkedBody{
		client: client,
		parser: newChunkedParser(maxLine),
	}
}

func (c *chunkedBody) Retrieve() ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}

	if c.err != nil {
		return nil, c.err
	}

	for {
		data, err := c.client.Fetch()
		if err != nil {
			if err == io.EOF {
				err = errChunkedEOF
			}

			c.err = err
			return nil, err
		}

		chunk, extra, err := c.parser.Parse(data)
		switch err {
		case nil:
			c.client.Pushback(extra)
			if len(chunk) > 0 {
				return chunk, nil
			}
		case io.EOF:
			c.client.Pushback(extra)
			c.done = true
			return nil, io.EOF
		default:
			c.err = err
			return nil, err
		}
	}
}

// untilCloseBody treats the end of the stream as the end of the body.
type untilCloseBody struct {
	client transport.Client
}

func (u *untilCloseBody) Retrieve() ([]byte, error) {
	return u.client.Fetch()
}

type emptyBody struct{}

func (emptyBody) Retrieve() ([]byte, error) {
	return nil, io.EOF
}
