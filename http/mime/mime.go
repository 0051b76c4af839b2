package mime

import (
	"path"
	"strings"
)

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	XML         MIME = "text/xml"
	CSS         MIME = "text/css"
	CSV         MIME = "text/csv"
	JavaScript  MIME = "text/javascript"
	JSON        MIME = "application/json"
	YAML        MIME = "application/yaml"
	PDF         MIME = "application/pdf"
	ZIP         MIME = "application/zip"
	GZIP        MIME = "application/gzip"
	ZSTD        MIME = "application/zstd"
	WASM        MIME = "application/wasm"
	AVIF        MIME = "image/avif"
	GIF         MIME = "image/gif"
	JPEG        MIME = "image/jpeg"
	PNG         MIME = "image/png"
	SVG         MIME = "image/svg+xml"
	WEBP        MIME = "image/webp"
	ICO         MIME = "image/vnd.microsoft.icon"
	Multipart   MIME = "multipart/form-data"
)

var Extension = map[string]MIME{
	".txt":  Plain,
	".htm":  HTML,
	".html": HTML,
	".xml":  XML,
	".css":  CSS,
	".csv":  CSV,
	".js":   JavaScript,
	".mjs":  JavaScript,
	".json": JSON,
	".yaml": YAML,
	".yml":  YAML,
	".pdf":  PDF,
	".zip":  ZIP,
	".gz":   GZIP,
	".zst":  ZSTD,
	".wasm": WASM,
	".avif": AVIF,
	".gif":  GIF,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".png":  PNG,
	".svg":  SVG,
	".webp": WEBP,
	".ico":  ICO,
}

// ByFilename guesses the MIME by the file extension. Unknown extensions are
// OctetStream.
func ByFilename(filename string) MIME {
	if mime, found := Extension[strings.ToLower(path.Ext(filename))]; found {
		return mime
	}

	return OctetStream
}
