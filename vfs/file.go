package vfs

import (
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// File is an open file of the VFS, with the operations of sqlite3_io_methods.
type File interface {
	// Name returns the path with which the File was opened.
	Name() string
	// Close the File, releasing its resources. Close must be called exactly once.
	Close() error
	// ReadAt reads len(p) bytes at |offset|.
	ReadAt(p []byte, offset int64) (int, error)
	// WriteAt writes |p| at |offset|.
	WriteAt(p []byte, offset int64) (int, error)
	// Truncate the File to |size|.
	Truncate(size int64) error
	// Sync the File to stable storage.
	Sync(SyncFlag) error
	// FileSize returns the current size of the File.
	FileSize() (int64, error)
	// Lock upgrades the File lock to |level|.
	Lock(level LockLevel) error
	// Unlock downgrades the File lock to |level|.
	Unlock(level LockLevel) error
	// CheckReservedLock returns whether any connection holds a RESERVED or
	// greater lock of the File.
	CheckReservedLock() (bool, error)
	// FileControl performs a SQLite file-control |op|.
	FileControl(op int, arg interface{}) error
	// SectorSize returns the sector size of the underlying device.
	SectorSize() int
	// DeviceCharacteristics returns SQLITE_IOCAP_* device capability flags.
	DeviceCharacteristics() int
}

// noLocks provides the locking and device-description methods of File for
// a VFS serving a single connection.
type noLocks struct{}

func (noLocks) Lock(LockLevel) error             { return nil }
func (noLocks) Unlock(LockLevel) error           { return nil }
func (noLocks) CheckReservedLock() (bool, error) { return false, nil }
func (noLocks) SectorSize() int                  { return sectorSize }
func (noLocks) DeviceCharacteristics() int       { return 0 }

// FileControl recognizes no opcodes.
func (noLocks) FileControl(op int, _ interface{}) error {
	return errors.WithMessagef(sqlite3.ErrNotFound, "file control %d", op)
}
