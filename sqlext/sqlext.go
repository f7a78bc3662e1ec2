// Package sqlext extends SQLite connections with SQL functions which compress
// and decompress values, so that applications on constrained devices may
// shrink large TEXT or BLOB columns before they're written to flash:
//
//	INSERT INTO readings(id, payload) VALUES (?, flash_compress(?));
//	SELECT flash_decompress(payload) FROM readings WHERE id = ?;
//
// Compressed values are codecs blobs: a varint uncompressed length followed
// by content compressed under the driver's configured CompressionCodec.
package sqlext

import (
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/flashvfs/codecs"
)

// Names of registered SQL functions.
const (
	CompressFunc   = "flash_compress"
	DecompressFunc = "flash_decompress"
)

// Register a database/sql driver |name|, being the go-sqlite3 driver with
// compression functions of |codec| installed on each new connection.
// As with sql.Register, registering a |name| twice panics.
func Register(name string, codec codecs.CompressionCodec) {
	sql.Register(name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return RegisterFunctions(conn, codec)
		},
	})
	log.WithFields(log.Fields{"driver": name, "codec": codec}).Debug("registered SQLite driver")
}

// RegisterFunctions installs compression functions of |codec| on |conn|.
func RegisterFunctions(conn *sqlite3.SQLiteConn, codec codecs.CompressionCodec) error {
	if err := conn.RegisterFunc(CompressFunc, compressFn(codec), true); err != nil {
		return errors.WithMessagef(err, "registering %s", CompressFunc)
	}
	if err := conn.RegisterFunc(DecompressFunc, decompressFn(codec), true); err != nil {
		return errors.WithMessagef(err, "registering %s", DecompressFunc)
	}
	return nil
}

// compressFn returns a SQL function which compresses its argument, taken as
// bytes. NULL compresses to NULL.
func compressFn(codec codecs.CompressionCodec) func(interface{}) (interface{}, error) {
	return func(v interface{}) (interface{}, error) {
		var p []byte

		switch vv := v.(type) {
		case nil:
			return nil, nil
		case []byte:
			if vv == nil {
				return nil, nil // go-sqlite3 passes NULL as a nil []byte.
			}
			p = vv
		case string:
			p = []byte(vv)
		default:
			p = []byte(fmt.Sprint(vv))
		}
		return codecs.EncodeBlob(codec, p)
	}
}

// decompressFn returns a SQL function which decompresses a blob argument.
// Arguments which aren't blobs, or are too short to be compressed values,
// decompress to NULL. Empty content decompresses to empty TEXT.
func decompressFn(codec codecs.CompressionCodec) func(interface{}) (interface{}, error) {
	return func(v interface{}) (interface{}, error) {
		var blob, ok = v.([]byte)
		if !ok {
			return nil, nil
		}

		var out, err = codecs.DecodeBlob(codec, blob)
		if err == codecs.ErrShortBlob {
			return nil, nil
		} else if err != nil {
			return nil, errors.WithMessage(err, DecompressFunc)
		} else if len(out) == 0 {
			// go-sqlite3 returns an empty []byte as NULL.
			return "", nil
		}
		return out, nil
	}
}
