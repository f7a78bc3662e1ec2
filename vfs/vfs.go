package vfs

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.gazette.dev/flashvfs/blockcache"
)

// DefaultMaxPathname is the default maximum length of a VFS path name.
const DefaultMaxPathname = 100

// VFS is a SQLite virtual file system. Its exported fields may be customized
// after New and prior to first use.
type VFS struct {
	// Name under which the VFS is registered.
	Name string
	// Fs is the underlying file system of database (and non-journal) files.
	Fs afero.Fs
	// MaxPathname is the maximum length of a path name. Longer names are
	// truncated by FullPathname.
	MaxPathname int
	// Allocator of Blocks for the caches of memory files. If nil, each
	// memory file allocates from the heap without bound.
	Allocator blockcache.Allocator
	// Elision policy of memory file caches.
	Elision blockcache.ElisionPolicy
	// MemoryWAL additionally opens write-ahead logs as memory files.
	MemoryWAL bool
	// Rand is the source of Randomness. New uses crypto/rand.
	Rand io.Reader
	// Now returns the current time. New uses time.Now.
	Now func() time.Time
}

// New returns a VFS |name| over the file system |fs|.
func New(name string, fs afero.Fs) *VFS {
	return &VFS{
		Name:        name,
		Fs:          fs,
		MaxPathname: DefaultMaxPathname,
		Elision:     blockcache.ElideUnbacked,
		Rand:        rand.Reader,
		Now:         time.Now,
	}
}

// Open the file |name| with |flags|. Main rollback journals (and, if
// MemoryWAL is set, write-ahead logs) open as ephemeral memory files, each
// owning a new and empty blockcache.Cache. Other files open on the
// underlying Fs: read-write opens create the file if it doesn't exist, and
// read-only opens require that it does. Open returns the File and the flags
// with which it was actually opened.
func (v *VFS) Open(name string, flags OpenFlag) (File, OpenFlag, error) {
	if name == "" {
		return nil, 0, errors.WithMessage(sqlite3.ErrIoErr, "open of empty path")
	}
	name = v.truncate(name)

	if flags&OpenMainJournal != 0 || (v.MemoryWAL && flags&OpenWAL != 0) {
		var cache = blockcache.NewCache(v.Allocator)
		cache.Elision = v.Elision

		openedFilesTotal.WithLabelValues(kindMemory).Inc()
		log.WithFields(log.Fields{"vfs": v.Name, "name": name, "flags": flags}).
			Debug("opened memory file")
		return newMemFile(name, cache), flags, nil
	}

	var osFlags = os.O_RDONLY
	var outFlags = flags &^ (OpenReadOnly | OpenReadWrite)

	if flags&OpenReadWrite != 0 {
		osFlags = os.O_RDWR | os.O_CREATE
		if flags&(OpenCreate|OpenExclusive) == OpenCreate|OpenExclusive {
			osFlags |= os.O_EXCL
		}
		outFlags |= OpenReadWrite
	} else {
		outFlags |= OpenReadOnly
	}

	var file, err = v.Fs.OpenFile(name, osFlags, 0644)
	if err != nil {
		fileErrorsTotal.WithLabelValues("open").Inc()
		log.WithFields(log.Fields{"vfs": v.Name, "name": name, "flags": flags, "err": err}).
			Warn("cannot open file")
		return nil, 0, errors.WithMessage(sqlite3.ErrCantOpen, err.Error())
	}

	openedFilesTotal.WithLabelValues(kindDisk).Inc()
	log.WithFields(log.Fields{"vfs": v.Name, "name": name, "flags": outFlags}).
		Debug("opened disk file")

	return &diskFile{
		name:          name,
		file:          file,
		fs:            v.Fs,
		deleteOnClose: flags&OpenDeleteOnClose != 0,
	}, outFlags, nil
}

// Delete the file |name|. Deleting a file which doesn't exist is not an error.
// Directory syncs are not required of the underlying Fs, and |syncDir|
// is ignored.
func (v *VFS) Delete(name string, syncDir bool) error {
	if err := v.Fs.Remove(name); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		fileErrorsTotal.WithLabelValues("delete").Inc()
		return errors.WithMessage(sqlite3.ErrIoErrDelete, err.Error())
	}
	log.WithFields(log.Fields{"vfs": v.Name, "name": name}).Debug("deleted file")
	return nil
}

// Access returns whether the file |name| exists and, for AccessReadWrite,
// whether it's also writable.
func (v *VFS) Access(name string, flags AccessFlag) (bool, error) {
	var info, err = v.Fs.Stat(name)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.WithMessage(sqlite3.ErrIoErrAccess, err.Error())
	}

	if flags == AccessReadWrite {
		return info.Mode().Perm()&0200 != 0, nil
	}
	return true, nil
}

// FullPathname returns the canonical form of |name|. The underlying file
// system has no working directory, so names are cleaned but not resolved.
func (v *VFS) FullPathname(name string) (string, error) {
	if name == "" {
		return "", errors.WithMessage(sqlite3.ErrCantOpen, "empty path")
	}
	return v.truncate(path.Clean(name)), nil
}

// Randomness fills |p| from the VFS's random source, and returns the number
// of bytes filled.
func (v *VFS) Randomness(p []byte) int {
	var n, err = io.ReadFull(v.Rand, p)
	if err != nil {
		log.WithFields(log.Fields{"vfs": v.Name, "err": err}).Warn("short read of randomness")
	}
	return n
}

// TempName returns a random name for a temporary file, which SQLite
// requests by opening a nil path.
func (v *VFS) TempName() string {
	var b [8]byte
	v.Randomness(b[:])
	return fmt.Sprintf("etilqs_%x", b)
}

// Sleep for |d|, and return the duration actually slept.
func (v *VFS) Sleep(d time.Duration) time.Duration {
	var start = time.Now()
	time.Sleep(d)
	return time.Since(start)
}

// CurrentTime returns the current time as a Julian day number.
func (v *VFS) CurrentTime() float64 {
	return julianDay(v.Now())
}

// julianEpoch is the Julian day number of the Unix epoch.
const julianEpoch = 2440587.5

func julianDay(t time.Time) float64 {
	return float64(t.UnixNano())/float64(24*time.Hour) + julianEpoch
}

func (v *VFS) truncate(name string) string {
	if v.MaxPathname > 0 && len(name) > v.MaxPathname {
		log.WithFields(log.Fields{"vfs": v.Name, "name": name, "max": v.MaxPathname}).
			Debug("truncating long path name")
		return name[:v.MaxPathname]
	}
	return name
}
