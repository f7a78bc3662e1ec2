package vfs

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/flashvfs/blockcache"
)

// memFile is an ephemeral File held entirely in a blockcache.Cache.
type memFile struct {
	noLocks

	name  string
	cache *blockcache.Cache
}

func newMemFile(name string, cache *blockcache.Cache) *memFile {
	return &memFile{name: name, cache: cache}
}

func (f *memFile) Name() string { return f.name }

// ReadAt always reads the full len(p). Ranges of |p| never written to
// the File (or written only with zeros) are left as the caller provided them.
func (f *memFile) ReadAt(p []byte, offset int64) (int, error) {
	offset = maskOffset(offset)
	f.cache.Read(offset, p)

	if log.IsLevelEnabled(log.TraceLevel) {
		log.WithFields(log.Fields{"name": f.name, "offset": offset, "amount": len(p)}).
			Trace("memory file read")
	}
	return len(p), nil
}

func (f *memFile) WriteAt(p []byte, offset int64) (int, error) {
	offset = maskOffset(offset)
	var n, err = f.cache.Write(offset, p)

	if err != nil {
		fileErrorsTotal.WithLabelValues("write").Inc()
		log.WithFields(log.Fields{
			"name":    f.name,
			"offset":  offset,
			"amount":  len(p),
			"written": n,
			"err":     err,
		}).Warn("memory file write failed")
		return n, errors.WithMessagef(err, "writing %d bytes of %s at %d", len(p), f.name, offset)
	}
	if log.IsLevelEnabled(log.TraceLevel) {
		log.WithFields(log.Fields{"name": f.name, "offset": offset, "amount": len(p)}).
			Trace("memory file write")
	}
	return n, nil
}

// Truncate is a no-op. Journals are invalidated by a zeroed header,
// and the Cache is discarded on Close.
func (f *memFile) Truncate(int64) error { return nil }

// Sync is a no-op: there's no stable storage behind the Cache.
func (f *memFile) Sync(SyncFlag) error { return nil }

func (f *memFile) FileSize() (int64, error) { return f.cache.Size(), nil }

// Close destroys the Cache, releasing every Block. The Cache tolerates
// repeated teardown, so a double Close is harmless.
func (f *memFile) Close() error {
	log.WithFields(log.Fields{
		"name":   f.name,
		"size":   f.cache.Size(),
		"blocks": f.cache.Len(),
	}).Debug("closing memory file")

	f.cache.Destroy()
	return nil
}

// Cache returns the blockcache.Cache backing the memory File |f|, or nil if
// |f| is not a memory File.
func Cache(f File) *blockcache.Cache {
	if mf, ok := f.(*memFile); ok {
		return mf.cache
	}
	return nil
}
