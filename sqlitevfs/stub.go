//go:build !(cgo && libsqlite3)

package sqlitevfs

import "go.gazette.dev/flashvfs/vfs"

// Register returns ErrNotLinked.
func Register(*vfs.VFS, bool) error { return ErrNotLinked }

// Unregister is a no-op.
func Unregister(*vfs.VFS) {}
