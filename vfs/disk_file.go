package vfs

import (
	"io"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// diskFile is a File of the underlying file system.
type diskFile struct {
	noLocks

	name          string
	file          afero.File
	fs            afero.Fs
	deleteOnClose bool
}

func (f *diskFile) Name() string { return f.name }

// ReadAt reads len(p) bytes at |offset|. If fewer are available, the
// remainder of |p| is zero-filled and SQLITE_IOERR_SHORT_READ is returned,
// as SQLite requires.
func (f *diskFile) ReadAt(p []byte, offset int64) (int, error) {
	offset = maskOffset(offset)
	var n, err = f.file.ReadAt(p, offset)

	if n == len(p) && (err == nil || err == io.EOF) {
		return n, nil
	} else if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		// The file ends before |offset + len(p)|. afero may report this
		// with a nil error, io.EOF, or (beyond the end) io.ErrUnexpectedEOF.
		clear(p[n:])
		log.WithFields(log.Fields{
			"name":   f.name,
			"offset": offset,
			"amount": len(p),
			"read":   n,
		}).Debug("short read")
		return n, errors.WithMessagef(sqlite3.ErrIoErrShortRead,
			"read %d of %d bytes of %s at %d", n, len(p), f.name, offset)
	}

	fileErrorsTotal.WithLabelValues("read").Inc()
	log.WithFields(log.Fields{"name": f.name, "offset": offset, "err": err}).Warn("read failed")
	return n, errors.WithMessage(sqlite3.ErrIoErrRead, err.Error())
}

func (f *diskFile) WriteAt(p []byte, offset int64) (int, error) {
	offset = maskOffset(offset)
	var n, err = f.file.WriteAt(p, offset)

	if err == nil && n == len(p) {
		return n, nil
	} else if err == nil {
		err = io.ErrShortWrite
	}
	fileErrorsTotal.WithLabelValues("write").Inc()
	log.WithFields(log.Fields{
		"name":    f.name,
		"offset":  offset,
		"amount":  len(p),
		"written": n,
		"err":     err,
	}).Warn("write failed")
	return n, errors.WithMessage(sqlite3.ErrIoErrWrite, err.Error())
}

func (f *diskFile) Truncate(size int64) error {
	if err := f.file.Truncate(size); err != nil {
		fileErrorsTotal.WithLabelValues("truncate").Inc()
		return errors.WithMessage(sqlite3.ErrIoErrTruncate, err.Error())
	}
	return nil
}

func (f *diskFile) Sync(SyncFlag) error {
	if err := f.file.Sync(); err != nil {
		fileErrorsTotal.WithLabelValues("sync").Inc()
		log.WithFields(log.Fields{"name": f.name, "err": err}).Warn("sync failed")
		return errors.WithMessage(sqlite3.ErrIoErrFsync, err.Error())
	}
	return nil
}

func (f *diskFile) FileSize() (int64, error) {
	var info, err = f.file.Stat()
	if err != nil {
		fileErrorsTotal.WithLabelValues("stat").Inc()
		return 0, errors.WithMessage(sqlite3.ErrIoErrFstat, err.Error())
	}
	return info.Size(), nil
}

func (f *diskFile) Close() error {
	var err = f.file.Close()
	log.WithFields(log.Fields{"name": f.name, "err": err}).Debug("closed disk file")

	if err != nil {
		fileErrorsTotal.WithLabelValues("close").Inc()
		return errors.WithMessage(sqlite3.ErrIoErrClose, err.Error())
	}
	if f.deleteOnClose {
		if err = f.fs.Remove(f.name); err != nil {
			fileErrorsTotal.WithLabelValues("delete").Inc()
			return errors.WithMessage(sqlite3.ErrIoErrDelete, err.Error())
		}
	}
	return nil
}
