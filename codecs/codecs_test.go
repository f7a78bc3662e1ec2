package codecs

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var allCodecs = []CompressionCodec{NONE, GZIP, SNAPPY, ZSTANDARD, LZ4}

func TestStreamingRoundTrip(t *testing.T) {
	var content = strings.Repeat("journal page content, ", 500)

	for _, codec := range allCodecs {
		var buf bytes.Buffer
		var w, err = NewCodecWriter(&buf, codec)
		require.NoError(t, err)

		// Multiple writes into one stream.
		_, err = io.WriteString(w, content[:1000])
		require.NoError(t, err)
		_, err = io.WriteString(w, content[1000:])
		require.NoError(t, err)
		require.NoError(t, w.Close())

		if codec != NONE {
			require.Less(t, buf.Len(), len(content), codec.String())
		}

		r, err := NewCodecReader(&buf, codec)
		require.NoError(t, err)
		out, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		require.Equal(t, content, string(out), codec.String())
	}
}

func TestBlobRoundTrip(t *testing.T) {
	var inputs = [][]byte{
		[]byte("x"),
		[]byte("a modest value"),
		bytes.Repeat([]byte("abc"), 10000),
	}
	for _, codec := range allCodecs {
		for _, in := range inputs {
			var blob, err = EncodeBlob(codec, in)
			require.NoError(t, err)

			out, err := DecodeBlob(codec, blob)
			require.NoError(t, err, codec.String())
			require.Equal(t, in, out)
		}
	}
}

func TestEmptyBlobRoundTrip(t *testing.T) {
	for _, codec := range allCodecs {
		var blob, err = EncodeBlob(codec, nil)
		require.NoError(t, err, codec.String())
		require.Equal(t, byte(0), blob[0])

		out, err := DecodeBlob(codec, blob)
		require.NoError(t, err, codec.String())
		require.Empty(t, out, codec.String())
	}
	// NONE emits no payload at all: the blob is just its header.
	var blob, _ = EncodeBlob(NONE, nil)
	require.Equal(t, []byte{0x00}, blob)
}

func TestBlobHeader(t *testing.T) {
	var blob, err = EncodeBlob(NONE, bytes.Repeat([]byte{'z'}, 300))
	require.NoError(t, err)

	// 300 is a two-byte unsigned varint.
	require.Equal(t, []byte{0xac, 0x02}, blob[:2])
	require.Len(t, blob, 302)
}

func TestBlobDecodeErrors(t *testing.T) {
	var _, err = DecodeBlob(NONE, nil)
	require.Equal(t, ErrShortBlob, err)
	_, err = DecodeBlob(NONE, []byte{0x01})
	require.Equal(t, ErrShortBlob, err)
	_, err = DecodeBlob(NONE, []byte{0x80})
	require.Equal(t, ErrShortBlob, err)

	// Unterminated varint header.
	_, err = DecodeBlob(NONE, []byte{0xff, 0xff})
	require.EqualError(t, err, "invalid blob length header")

	// Header disagrees with content.
	_, err = DecodeBlob(NONE, []byte{0x05, 'a', 'b'})
	require.EqualError(t, err, "blob length header is 5, but decoded 2 bytes")
	_, err = DecodeBlob(NONE, []byte{0x01, 'a', 'b'})
	require.EqualError(t, err, "blob length header is 1, but decoded 2 bytes")

	// Content which isn't validly compressed.
	_, err = DecodeBlob(GZIP, []byte{0x03, 'a', 'b', 'c'})
	require.Error(t, err)
}

func TestUnsupportedCodec(t *testing.T) {
	var _, err = NewCodecWriter(io.Discard, CompressionCodec(99))
	require.EqualError(t, err, "unsupported codec CompressionCodec(99)")
	_, err = NewCodecReader(strings.NewReader(""), CompressionCodec(99))
	require.EqualError(t, err, "unsupported codec CompressionCodec(99)")
	_, err = EncodeBlob(CompressionCodec(99), []byte("x"))
	require.Error(t, err)
}

func TestParseCompressionCodec(t *testing.T) {
	for _, codec := range allCodecs {
		var parsed, err = ParseCompressionCodec(codec.String())
		require.NoError(t, err)
		require.Equal(t, codec, parsed)
	}
	var _, err = ParseCompressionCodec("brotli")
	require.EqualError(t, err, `unknown compression codec "brotli"`)

	var c CompressionCodec
	require.NoError(t, c.UnmarshalFlag("lz4"))
	require.Equal(t, LZ4, c)
}
