package vfs

import (
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.gazette.dev/flashvfs/blockcache"
)

// resultOK is the SQLite result code of a successful operation.
const resultOK = 0

// ResultCode translates an error returned by the VFS or a File into the
// SQLite result code to be returned at the engine boundary. Errors are
// examined through errors.Cause: sqlite3.ErrNo and sqlite3.ErrNoExtended
// causes map to themselves, blockcache.ErrNoMem maps to SQLITE_NOMEM, and
// all others map to SQLITE_IOERR.
func ResultCode(err error) int {
	if err == nil {
		return resultOK
	}
	switch cause := errors.Cause(err).(type) {
	case sqlite3.ErrNo:
		return int(cause)
	case sqlite3.ErrNoExtended:
		return int(cause)
	default:
		if cause == blockcache.ErrNoMem {
			return int(sqlite3.ErrNomem)
		}
		return int(sqlite3.ErrIoErr)
	}
}
