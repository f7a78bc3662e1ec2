package codecs

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ErrShortBlob is returned when decoding a blob too short to hold both a
// length header and a compressed payload.
var ErrShortBlob = errors.New("blob is too short")

// maxBlobPrealloc bounds the buffer pre-allocated from a blob's
// (untrusted) length header.
const maxBlobPrealloc = 1 << 20

// EncodeBlob compresses |p| under |codec| into a blob: the unsigned varint
// length of |p|, followed by the compressed content.
func EncodeBlob(codec CompressionCodec, p []byte) ([]byte, error) {
	var buf = bytes.NewBuffer(binary.AppendUvarint(nil, uint64(len(p))))

	var w, err = NewCodecWriter(buf, codec)
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(p); err != nil {
		return nil, errors.WithMessagef(err, "compressing with %s", codec)
	}
	if err = w.Close(); err != nil {
		return nil, errors.WithMessagef(err, "closing %s compressor", codec)
	}
	return buf.Bytes(), nil
}

// DecodeBlob decompresses a blob produced by EncodeBlob under |codec|.
// A blob holding only a zero length header is empty content, as encoded by
// codecs (NONE and SNAPPY) which emit no bytes for empty input. Any other
// blob shorter than two bytes is ErrShortBlob.
func DecodeBlob(codec CompressionCodec, blob []byte) ([]byte, error) {
	if len(blob) == 1 && blob[0] == 0 {
		return []byte{}, nil
	} else if len(blob) < 2 {
		return nil, ErrShortBlob
	}
	var size, n = binary.Uvarint(blob)
	if n <= 0 {
		return nil, errors.New("invalid blob length header")
	}

	var r, err = NewCodecReader(bytes.NewReader(blob[n:]), codec)
	if err != nil {
		return nil, errors.WithMessagef(err, "opening %s decompressor", codec)
	}
	defer r.Close()

	var out bytes.Buffer
	out.Grow(int(min(size, maxBlobPrealloc)))

	// Read at most one byte more than expected, to detect overlong content.
	if _, err = io.Copy(&out, io.LimitReader(r, int64(min(size, 1<<62))+1)); err != nil {
		return nil, errors.WithMessagef(err, "decompressing with %s", codec)
	}
	if uint64(out.Len()) != size {
		return nil, errors.Errorf("blob length header is %d, but decoded %d bytes", size, out.Len())
	}
	return out.Bytes(), nil
}
