package main

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"go.gazette.dev/flashvfs/codecs"
)

type cmdBlob struct {
	Codec codecs.CompressionCodec `long:"codec" default:"lz4" description:"Compression codec of blobs (none, gzip, snappy, zstandard, lz4)"`
}

type cmdBlobCompress struct{ cmdBlob }
type cmdBlobDecompress struct{ cmdBlob }

func init() {
	Commands.AddCommand("", "blob", "Encode and decode compressed blobs", "", &struct{}{})
	Commands.AddCommand("blob", "compress", "Compress stdin into a blob on stdout", `
Compress the content of stdin into a blob, as produced by the flash_compress
SQL function, and write it to stdout.

>    flashvfs blob compress --codec snappy < table.csv > table.blob
`, &cmdBlobCompress{})
	Commands.AddCommand("blob", "decompress", "Decompress a blob on stdin to stdout", `
Decompress a blob read from stdin, as produced by the flash_compress SQL
function, and write its content to stdout.

>    flashvfs blob decompress --codec snappy < table.blob
`, &cmdBlobDecompress{})
}

func (cmd *cmdBlobCompress) Execute([]string) error {
	startup()
	return transformBlob(os.Stdin, os.Stdout, func(p []byte) ([]byte, error) {
		return codecs.EncodeBlob(cmd.Codec, p)
	})
}

func (cmd *cmdBlobDecompress) Execute([]string) error {
	startup()
	return transformBlob(os.Stdin, os.Stdout, func(p []byte) ([]byte, error) {
		return codecs.DecodeBlob(cmd.Codec, p)
	})
}

func transformBlob(r io.Reader, w io.Writer, fn func([]byte) ([]byte, error)) error {
	var in, err = io.ReadAll(r)
	if err != nil {
		return errors.WithMessage(err, "reading input")
	}
	out, err := fn(in)
	if err != nil {
		return err
	}
	if _, err = w.Write(out); err != nil {
		return errors.WithMessage(err, "writing output")
	}
	return nil
}
