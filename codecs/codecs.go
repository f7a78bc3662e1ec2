// Package codecs implements the compression codecs used to shrink values
// before they're stored in a database, both as streaming Compressors and
// Decompressors, and as self-describing blobs.
package codecs

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// CompressionCodec identifies a compression algorithm.
type CompressionCodec int

const (
	// NONE applies no compression.
	NONE CompressionCodec = iota
	// GZIP is DEFLATE within gzip framing. Slow, but with good ratios.
	GZIP
	// SNAPPY is fast, with modest ratios.
	SNAPPY
	// ZSTANDARD is available only if not built with the "nozstd" tag.
	ZSTANDARD
	// LZ4 frames. Fast, and cheap to decode on small targets.
	LZ4
)

var codecNames = map[CompressionCodec]string{
	NONE:      "none",
	GZIP:      "gzip",
	SNAPPY:    "snappy",
	ZSTANDARD: "zstandard",
	LZ4:       "lz4",
}

func (c CompressionCodec) String() string {
	if s, ok := codecNames[c]; ok {
		return s
	}
	return fmt.Sprintf("CompressionCodec(%d)", int(c))
}

// ParseCompressionCodec parses a CompressionCodec from its String form.
func ParseCompressionCodec(s string) (CompressionCodec, error) {
	for c, name := range codecNames {
		if name == s {
			return c, nil
		}
	}
	return NONE, fmt.Errorf("unknown compression codec %q", s)
}

// MarshalFlag implements flags.Marshaler.
func (c CompressionCodec) MarshalFlag() (string, error) { return c.String(), nil }

// UnmarshalFlag implements flags.Unmarshaler.
func (c *CompressionCodec) UnmarshalFlag(s string) (err error) {
	*c, err = ParseCompressionCodec(s)
	return err
}

// Decompressor is a ReadCloser where Close closes and releases Decompressor
// state, but does not Close or affect the underlying Reader.
type Decompressor io.ReadCloser

// Compressor is a WriteCloser where Close closes and releases Compressor
// state, potentially flushing final content to the underlying Writer,
// but does not Close or otherwise affect the underlying Writer.
type Compressor io.WriteCloser

// NewCodecReader returns a Decompressor of the Reader encoded with CompressionCodec.
func NewCodecReader(r io.Reader, codec CompressionCodec) (Decompressor, error) {
	switch codec {
	case NONE:
		return io.NopCloser(r), nil
	case GZIP:
		return gzip.NewReader(r)
	case SNAPPY:
		return io.NopCloser(snappy.NewReader(r)), nil
	case ZSTANDARD:
		return zstdNewReader(r)
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported codec %s", codec)
	}
}

// NewCodecWriter returns a Compressor wrapping the Writer encoding with CompressionCodec.
func NewCodecWriter(w io.Writer, codec CompressionCodec) (Compressor, error) {
	switch codec {
	case NONE:
		return nopWriteCloser{w}, nil
	case GZIP:
		return gzip.NewWriter(w), nil
	case SNAPPY:
		return snappy.NewBufferedWriter(w), nil
	case ZSTANDARD:
		return zstdNewWriter(w)
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported codec %s", codec)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

var (
	zstdNewReader = func(io.Reader) (io.ReadCloser, error) {
		return nil, fmt.Errorf("ZSTANDARD was not enabled at compile time")
	}
	zstdNewWriter = func(io.Writer) (io.WriteCloser, error) {
		return nil, fmt.Errorf("ZSTANDARD was not enabled at compile time")
	}
)
