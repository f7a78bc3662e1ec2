// Package sqlitevfs registers a vfs.VFS with the SQLite library, so that
// database connections opened with a "vfs" URI parameter perform all of
// their file I/O through it:
//
//	var v = vfs.New("flashvfs", afero.NewOsFs())
//	if err := sqlitevfs.Register(v, false); err != nil {
//	    return err
//	}
//	db, err := sql.Open("sqlite3", "file:readings.db?vfs=flashvfs")
//
// Each sqlite3_vfs and sqlite3_file method is dispatched to the VFS or to
// the vfs.File opened by it. Rollback journals therefore live in memory
// blockcache.Caches, and never reach the underlying file system.
//
// The shim links the system SQLite library, and go-sqlite3 must link the
// same library rather than its bundled amalgamation. Build with the
// "libsqlite3" tag:
//
//	go test -tags libsqlite3 ./sqlitevfs/
//
// Otherwise, Register returns ErrNotLinked.
package sqlitevfs

import "github.com/pkg/errors"

// ErrNotLinked is returned by Register if the package was built without
// the system SQLite library.
var ErrNotLinked = errors.New("sqlitevfs requires cgo and the libsqlite3 build tag")
