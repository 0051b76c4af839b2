package config

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type (
	HeadersNumber struct {
		Default int `yaml:"default" validate:"gte=0"`
		Maximal int `yaml:"maximal" validate:"gte=1,gtefield=Default"`
	}

	HeadersSpace struct {
		Default int `yaml:"default" validate:"gte=0"`
		Maximal int `yaml:"maximal" validate:"gte=64,gtefield=Default"`
	}
)

type (
	Headers struct {
		// Number is responsible for the number of response header fields. Default is the
		// number of pre-allocated seats, Maximal is the hard limit. Exceeding it results in
		// errors.ErrTooManyHeaders.
		Number HeadersNumber `yaml:"number"`
		// Space limits the amount of memory occupied by the response header block. Exceeding
		// it results in errors.ErrHeaderFieldsTooLarge.
		Space HeadersSpace `yaml:"space"`
	}

	StatusLine struct {
		// MaxSize is the maximal length of the response status line, terminator excluded.
		MaxSize int `yaml:"max_size" validate:"gte=16"`
	}

	Body struct {
		// StreamChunkSize is the size of the buffer used to read unsized request bodies.
		// Every non-empty read becomes a single chunk on the wire.
		StreamChunkSize int `yaml:"stream_chunk_size" validate:"gte=16"`
		// ChunkLineSize limits chunk-size lines and trailer field lines of chunked
		// response bodies.
		ChunkLineSize int `yaml:"chunk_line_size" validate:"gte=16"`
		// BufferPrealloc is the initial capacity of a buffer collecting a whole response body,
		// when its length isn't known in advance.
		BufferPrealloc int `yaml:"buffer_prealloc" validate:"gte=0"`
	}

	NET struct {
		// ReadBufferSize is the size of the buffer the connection is read into.
		ReadBufferSize int `yaml:"read_buffer_size" validate:"gte=64"`
	}

	Multipart struct {
		// BoundaryPrefix precedes 24 random hex digits of a generated boundary.
		BoundaryPrefix string `yaml:"boundary_prefix" validate:"max=46"`
		// WriteBufferSize is the size of the buffer between the multipart writer and its sink.
		WriteBufferSize int `yaml:"write_buffer_size" validate:"gte=16"`
	}
)

// Config holds limits and buffer sizes used across the client.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because zero limits reject virtually every message.
type Config struct {
	Headers    Headers    `yaml:"headers"`
	StatusLine StatusLine `yaml:"status_line"`
	Body       Body       `yaml:"body"`
	NET        NET        `yaml:"net"`
	Multipart  Multipart  `yaml:"multipart"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 100,
			},
			Space: HeadersSpace{
				Default: 1 * 1024,
				// servers tend to be far more generous with cookies than clients are.
				Maximal: 64 * 1024,
			},
		},
		StatusLine: StatusLine{
			MaxSize: 4 * 1024,
		},
		Body: Body{
			StreamChunkSize: 1024,
			ChunkLineSize:   4 * 1024,
			BufferPrealloc:  1024,
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
		},
		Multipart: Multipart{
			BoundaryPrefix:  "--------------------------",
			WriteBufferSize: 4 * 1024,
		},
	}
}

var validate = validator.New()

// Validate checks whether all the limits are within the sane boundaries.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// Load decodes a YAML document on top of the defaults. Fields missing in the document keep
// their default values. The result is validated.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading: %w", err)
	}

	cfg := Default()
	if err = yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	return cfg, Validate(cfg)
}
