//go:build cgo && libsqlite3

package sqlitevfs

/*
#cgo linux LDFLAGS: -lsqlite3
#cgo darwin,amd64 LDFLAGS: -L/usr/local/opt/sqlite/lib -lsqlite3
#cgo darwin,amd64 CFLAGS: -I/usr/local/opt/sqlite/include
#cgo darwin,arm64 LDFLAGS: -L/opt/homebrew/opt/sqlite/lib -lsqlite3
#cgo darwin,arm64 CFLAGS: -I/opt/homebrew/opt/sqlite/include

#include <sqlite3.h>
#include <stdint.h>
#include <stdlib.h>

// Go callbacks of exports.go.
extern int goOpen(uintptr_t, char*, int, int*, uintptr_t*);
extern int goDelete(uintptr_t, char*, int);
extern int goAccess(uintptr_t, char*, int, int*);
extern int goFullPathname(uintptr_t, char*, int, char*);
extern int goRandomness(uintptr_t, int, char*);
extern int goSleep(uintptr_t, int);
extern int goCurrentTime(uintptr_t, double*);

extern int goFileClose(uintptr_t);
extern int goFileRead(uintptr_t, void*, int, sqlite3_int64);
extern int goFileWrite(uintptr_t, void*, int, sqlite3_int64);
extern int goFileTruncate(uintptr_t, sqlite3_int64);
extern int goFileSync(uintptr_t, int);
extern int goFileSize(uintptr_t, sqlite3_int64*);
extern int goFileLock(uintptr_t, int);
extern int goFileUnlock(uintptr_t, int);
extern int goFileCheckReservedLock(uintptr_t, int*);
extern int goFileControl(uintptr_t, int);
extern int goFileSectorSize(uintptr_t);
extern int goFileDeviceCharacteristics(uintptr_t);

// flashFile extends sqlite3_file with the cgo.Handle of its vfs.File.
typedef struct flashFile {
	sqlite3_file base;
	uintptr_t handle;
} flashFile;

static uintptr_t fileHandle(sqlite3_file *f) { return ((flashFile*)f)->handle; }
static uintptr_t vfsHandle(sqlite3_vfs *v) { return (uintptr_t)v->pAppData; }

static int flashClose(sqlite3_file *f) { return goFileClose(fileHandle(f)); }
static int flashRead(sqlite3_file *f, void *p, int n, sqlite3_int64 off) {
	return goFileRead(fileHandle(f), p, n, off);
}
static int flashWrite(sqlite3_file *f, const void *p, int n, sqlite3_int64 off) {
	return goFileWrite(fileHandle(f), (void*)p, n, off);
}
static int flashTruncate(sqlite3_file *f, sqlite3_int64 size) {
	return goFileTruncate(fileHandle(f), size);
}
static int flashSync(sqlite3_file *f, int flags) { return goFileSync(fileHandle(f), flags); }
static int flashFileSize(sqlite3_file *f, sqlite3_int64 *pSize) {
	return goFileSize(fileHandle(f), pSize);
}
static int flashLock(sqlite3_file *f, int level) { return goFileLock(fileHandle(f), level); }
static int flashUnlock(sqlite3_file *f, int level) { return goFileUnlock(fileHandle(f), level); }
static int flashCheckReservedLock(sqlite3_file *f, int *pResOut) {
	return goFileCheckReservedLock(fileHandle(f), pResOut);
}
static int flashFileControl(sqlite3_file *f, int op, void *pArg) {
	return goFileControl(fileHandle(f), op);
}
static int flashSectorSize(sqlite3_file *f) { return goFileSectorSize(fileHandle(f)); }
static int flashDeviceCharacteristics(sqlite3_file *f) {
	return goFileDeviceCharacteristics(fileHandle(f));
}

static const sqlite3_io_methods flashIoMethods = {
	.iVersion = 1,
	.xClose = flashClose,
	.xRead = flashRead,
	.xWrite = flashWrite,
	.xTruncate = flashTruncate,
	.xSync = flashSync,
	.xFileSize = flashFileSize,
	.xLock = flashLock,
	.xUnlock = flashUnlock,
	.xCheckReservedLock = flashCheckReservedLock,
	.xFileControl = flashFileControl,
	.xSectorSize = flashSectorSize,
	.xDeviceCharacteristics = flashDeviceCharacteristics,
};

static int flashOpen(sqlite3_vfs *v, const char *zName, sqlite3_file *f, int flags, int *pOutFlags) {
	flashFile *ff = (flashFile*)f;
	uintptr_t handle = 0;
	int outFlags = 0;

	// SQLite calls xClose only if pMethods is set, so it's set only on success.
	ff->base.pMethods = NULL;

	int rc = goOpen(vfsHandle(v), (char*)zName, flags, &outFlags, &handle);
	if (rc != SQLITE_OK) {
		return rc;
	}
	ff->handle = handle;
	ff->base.pMethods = &flashIoMethods;

	if (pOutFlags) {
		*pOutFlags = outFlags;
	}
	return SQLITE_OK;
}

static int flashDelete(sqlite3_vfs *v, const char *zName, int syncDir) {
	return goDelete(vfsHandle(v), (char*)zName, syncDir);
}
static int flashAccess(sqlite3_vfs *v, const char *zName, int flags, int *pResOut) {
	return goAccess(vfsHandle(v), (char*)zName, flags, pResOut);
}
static int flashFullPathname(sqlite3_vfs *v, const char *zName, int nOut, char *zOut) {
	return goFullPathname(vfsHandle(v), (char*)zName, nOut, zOut);
}

// Loadable extensions are not supported.
static void *flashDlOpen(sqlite3_vfs *v, const char *zPath) { return NULL; }
static void flashDlError(sqlite3_vfs *v, int nByte, char *zErrMsg) {
	sqlite3_snprintf(nByte, zErrMsg, "loadable extensions are not supported");
}
static void (*flashDlSym(sqlite3_vfs *v, void *p, const char *zSym))(void) { return NULL; }
static void flashDlClose(sqlite3_vfs *v, void *p) {}

static int flashRandomness(sqlite3_vfs *v, int nByte, char *zOut) {
	return goRandomness(vfsHandle(v), nByte, zOut);
}
static int flashSleep(sqlite3_vfs *v, int micros) { return goSleep(vfsHandle(v), micros); }
static int flashCurrentTime(sqlite3_vfs *v, double *pOut) {
	return goCurrentTime(vfsHandle(v), pOut);
}
static int flashGetLastError(sqlite3_vfs *v, int n, char *z) { return 0; }

static sqlite3_vfs *newFlashVFS(char *zName, uintptr_t handle, int mxPathname) {
	sqlite3_vfs *v = (sqlite3_vfs*)calloc(1, sizeof(sqlite3_vfs));
	if (v == NULL) {
		return NULL;
	}
	v->iVersion = 1;
	v->szOsFile = sizeof(flashFile);
	v->mxPathname = mxPathname;
	v->zName = zName;
	v->pAppData = (void*)handle;
	v->xOpen = flashOpen;
	v->xDelete = flashDelete;
	v->xAccess = flashAccess;
	v->xFullPathname = flashFullPathname;
	v->xDlOpen = flashDlOpen;
	v->xDlError = flashDlError;
	v->xDlSym = flashDlSym;
	v->xDlClose = flashDlClose;
	v->xRandomness = flashRandomness;
	v->xSleep = flashSleep;
	v->xCurrentTime = flashCurrentTime;
	v->xGetLastError = flashGetLastError;
	return v;
}

static void freeFlashVFS(sqlite3_vfs *v) {
	free((void*)v->zName);
	free(v);
}
*/
import "C"
import (
	"runtime/cgo"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/flashvfs/vfs"
)

// Register |v| with SQLite under v.Name, and with the vfs package registry.
// If |makeDefault|, it becomes SQLite's default VFS, used by connections
// which don't name one.
func Register(v *vfs.VFS, makeDefault bool) error {
	if v.Name == "" {
		return errors.New("VFS Name is empty")
	}
	var mxPathname = v.MaxPathname
	if mxPathname <= 0 {
		mxPathname = vfs.DefaultMaxPathname
	}

	liveVFSs.mu.Lock()
	defer liveVFSs.mu.Unlock()

	if _, ok := liveVFSs.m[v.Name]; ok {
		return errors.Errorf("VFS %q is already registered", v.Name)
	}

	var handle = cgo.NewHandle(v)
	var cVFS = C.newFlashVFS(C.CString(v.Name), C.uintptr_t(handle), C.int(mxPathname))
	if cVFS == nil {
		handle.Delete()
		return errors.WithMessage(sqlite3.ErrNomem, "allocating SQLite VFS")
	}

	var mkDefault C.int
	if makeDefault {
		mkDefault = 1
	}
	if rc := sqlite3.ErrNo(C.sqlite3_vfs_register(cVFS, mkDefault)); rc != 0 {
		C.freeFlashVFS(cVFS)
		handle.Delete()
		return errors.WithMessage(rc, "registering SQLite VFS")
	}
	if err := vfs.Register(v, makeDefault); err != nil {
		C.sqlite3_vfs_unregister(cVFS)
		C.freeFlashVFS(cVFS)
		handle.Delete()
		return err
	}
	liveVFSs.m[v.Name] = registration{vfs: v, c: cVFS, handle: handle}

	log.WithFields(log.Fields{"vfs": v.Name, "default": makeDefault}).Info("registered SQLite VFS")
	return nil
}

// Unregister |v| from SQLite and the vfs package registry. Connections using
// |v| must be closed first.
func Unregister(v *vfs.VFS) {
	liveVFSs.mu.Lock()
	defer liveVFSs.mu.Unlock()

	var reg, ok = liveVFSs.m[v.Name]
	if !ok || reg.vfs != v {
		return
	}
	if rc := sqlite3.ErrNo(C.sqlite3_vfs_unregister(reg.c)); rc != 0 {
		log.WithFields(log.Fields{"vfs": v.Name, "err": rc.Error()}).
			Error("failed to unregister SQLite VFS")
	}
	C.freeFlashVFS(reg.c)
	reg.handle.Delete()

	vfs.Unregister(v)
	delete(liveVFSs.m, v.Name)
}

type registration struct {
	vfs    *vfs.VFS
	c      *C.sqlite3_vfs
	handle cgo.Handle
}

// liveVFSs holds VFSs registered with SQLite, keyed on name.
var liveVFSs = struct {
	m  map[string]registration
	mu sync.Mutex
}{m: make(map[string]registration)}
