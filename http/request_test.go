package http

import (
	"bytes"
	"io"
	"mime"
	stdmultipart "mime/multipart"
	"strings"
	"testing"

	"github.com/indigo-web/hclient/http/method"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/hclient/multipart"
	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	t.Run("target", func(t *testing.T) {
		request := NewRequest(method.GET, "example.com", "/get?x=1&y=2")
		require.Equal(t, "/get", request.Path)
		require.Equal(t, "x=1&y=2", request.Query)
		require.Equal(t, "/get?x=1&y=2", request.Target())

		require.Equal(t, "/", NewRequest(method.GET, "example.com", "").Target())
		require.Equal(t, "/?q", NewRequest(method.GET, "example.com", "?q").Target())
	})

	t.Run("no body by default", func(t *testing.T) {
		request := NewRequest(method.GET, "example.com", "/")
		require.Equal(t, NoBody, request.Body.Kind())
	})

	t.Run("headers are copied", func(t *testing.T) {
		shared := kv.New().Add("Accept", "text/html")
		request := NewRequest(method.GET, "example.com", "/").MergeHeaders(shared)
		shared.Set("Accept", "application/json").Add("Extra", "1")

		require.Equal(t, []kv.Pair{{Key: "Accept", Value: "text/html"}}, request.Headers.Expose())
	})

	t.Run("multiple values", func(t *testing.T) {
		request := NewRequest(method.GET, "example.com", "/").
			Header("Accept", "text/html", "application/json")
		require.Equal(t, 2, request.Headers.Len())
	})

	t.Run("bodies", func(t *testing.T) {
		request := NewRequest(method.POST, "example.com", "/").String("hello")
		require.Equal(t, Buffered, request.Body.Kind())
		require.Equal(t, "hello", string(request.Body.Bytes()))

		stream := strings.NewReader("stream")
		request.Stream(stream)
		require.Equal(t, Streamed, request.Body.Kind())
		require.Equal(t, io.Reader(stream), request.Body.Stream())
		require.Nil(t, request.Body.Bytes())
	})

	t.Run("JSON", func(t *testing.T) {
		request, err := NewRequest(method.POST, "example.com", "/").
			JSON(map[string]int{"answer": 42})
		require.NoError(t, err)
		require.Equal(t, `{"answer":42}`, string(request.Body.Bytes()))
		require.Equal(t, "application/json", request.Headers.Value("content-type"))
	})

	t.Run("form", func(t *testing.T) {
		request, err := NewRequest(method.POST, "example.com", "/upload").
			Form(func(w *multipart.Writer) error {
				if err := w.WriteField("name", "Pavlo"); err != nil {
					return err
				}

				return w.WriteFile("file", "hello.txt", strings.NewReader("Hello, world!"))
			})
		require.NoError(t, err)

		mediaType, params, err := mime.ParseMediaType(request.Headers.Value("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		form, err := stdmultipart.NewReader(bytes.NewReader(request.Body.Bytes()), params["boundary"]).ReadForm(1024)
		require.NoError(t, err)
		require.Equal(t, []string{"Pavlo"}, form.Value["name"])
		require.Len(t, form.File["file"], 1)
		require.Equal(t, "hello.txt", form.File["file"][0].Filename)
	})

	t.Run("auth", func(t *testing.T) {
		request := NewRequest(method.GET, "example.com", "/").Auth("user", "pass")
		require.Equal(t, &BasicAuth{Username: "user", Password: "pass"}, request.BasicAuth)
	})
}

func TestFraming(t *testing.T) {
	require.Equal(t, "fixed(5)", FixedLength(5).String())
	require.Equal(t, "chunked", Framing{Kind: Chunked}.String())
	require.Equal(t, "until-close", Framing{Kind: UntilClose}.String())
	require.Equal(t, "empty", Framing{}.String())
}
