//go:build cgo && libsqlite3

package sqlitevfs

/*
#include <sqlite3.h>
#include <stdint.h>
*/
import "C"
import (
	"runtime/cgo"
	"time"
	"unsafe"

	log "github.com/sirupsen/logrus"
	"go.gazette.dev/flashvfs/vfs"
)

func vfsOf(h C.uintptr_t) *vfs.VFS { return cgo.Handle(h).Value().(*vfs.VFS) }
func fileOf(h C.uintptr_t) vfs.File { return cgo.Handle(h).Value().(vfs.File) }
func resultCode(err error) C.int { return C.int(vfs.ResultCode(err)) }

func bytesOf(p unsafe.Pointer, n C.int) []byte {
	if n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), int(n))
}

//export goOpen
func goOpen(h C.uintptr_t, zName *C.char, cFlags C.int, pOutFlags *C.int, pHandle *C.uintptr_t) C.int {
	var v = vfsOf(h)
	var flags = vfs.OpenFlag(cFlags)

	var name string
	if zName == nil {
		name, flags = v.TempName(), flags|vfs.OpenDeleteOnClose
	} else {
		name = C.GoString(zName)
	}

	var f, outFlags, err = v.Open(name, flags)
	if err != nil {
		log.WithFields(log.Fields{"vfs": v.Name, "name": name, "err": err}).Debug("open failed")
		return resultCode(err)
	}
	*pOutFlags = C.int(outFlags)
	*pHandle = C.uintptr_t(cgo.NewHandle(f))
	return C.SQLITE_OK
}

//export goDelete
func goDelete(h C.uintptr_t, zName *C.char, syncDir C.int) C.int {
	return resultCode(vfsOf(h).Delete(C.GoString(zName), syncDir != 0))
}

//export goAccess
func goAccess(h C.uintptr_t, zName *C.char, flags C.int, pResOut *C.int) C.int {
	var ok, err = vfsOf(h).Access(C.GoString(zName), vfs.AccessFlag(flags))
	if ok {
		*pResOut = 1
	} else {
		*pResOut = 0
	}
	return resultCode(err)
}

//export goFullPathname
func goFullPathname(h C.uintptr_t, zName *C.char, nOut C.int, zOut *C.char) C.int {
	var name, err = vfsOf(h).FullPathname(C.GoString(zName))
	if err != nil {
		return resultCode(err)
	} else if len(name) >= int(nOut) {
		return C.SQLITE_CANTOPEN
	}
	var out = bytesOf(unsafe.Pointer(zOut), nOut)
	out[copy(out, name)] = 0
	return C.SQLITE_OK
}

//export goRandomness
func goRandomness(h C.uintptr_t, n C.int, zOut *C.char) C.int {
	return C.int(vfsOf(h).Randomness(bytesOf(unsafe.Pointer(zOut), n)))
}

//export goSleep
func goSleep(h C.uintptr_t, micros C.int) C.int {
	var d = vfsOf(h).Sleep(time.Duration(micros) * time.Microsecond)
	return C.int(d / time.Microsecond)
}

//export goCurrentTime
func goCurrentTime(h C.uintptr_t, pOut *C.double) C.int {
	*pOut = C.double(vfsOf(h).CurrentTime())
	return C.SQLITE_OK
}

//export goFileClose
func goFileClose(h C.uintptr_t) C.int {
	var err = fileOf(h).Close()
	cgo.Handle(h).Delete()
	return resultCode(err)
}

//export goFileRead
func goFileRead(h C.uintptr_t, p unsafe.Pointer, n C.int, offset C.sqlite3_int64) C.int {
	var b = bytesOf(p, n)
	// Memory Files leave unwritten ranges untouched, and SQLite expects zeros.
	clear(b)

	var _, err = fileOf(h).ReadAt(b, int64(offset))
	return resultCode(err)
}

//export goFileWrite
func goFileWrite(h C.uintptr_t, p unsafe.Pointer, n C.int, offset C.sqlite3_int64) C.int {
	var _, err = fileOf(h).WriteAt(bytesOf(p, n), int64(offset))
	return resultCode(err)
}

//export goFileTruncate
func goFileTruncate(h C.uintptr_t, size C.sqlite3_int64) C.int {
	return resultCode(fileOf(h).Truncate(int64(size)))
}

//export goFileSync
func goFileSync(h C.uintptr_t, flags C.int) C.int {
	return resultCode(fileOf(h).Sync(vfs.SyncFlag(flags)))
}

//export goFileSize
func goFileSize(h C.uintptr_t, pSize *C.sqlite3_int64) C.int {
	var size, err = fileOf(h).FileSize()
	*pSize = C.sqlite3_int64(size)
	return resultCode(err)
}

//export goFileLock
func goFileLock(h C.uintptr_t, level C.int) C.int {
	return resultCode(fileOf(h).Lock(vfs.LockLevel(level)))
}

//export goFileUnlock
func goFileUnlock(h C.uintptr_t, level C.int) C.int {
	return resultCode(fileOf(h).Unlock(vfs.LockLevel(level)))
}

//export goFileCheckReservedLock
func goFileCheckReservedLock(h C.uintptr_t, pResOut *C.int) C.int {
	var reserved, err = fileOf(h).CheckReservedLock()
	if reserved {
		*pResOut = 1
	} else {
		*pResOut = 0
	}
	return resultCode(err)
}

//export goFileControl
func goFileControl(h C.uintptr_t, op C.int) C.int {
	return resultCode(fileOf(h).FileControl(int(op), nil))
}

//export goFileSectorSize
func goFileSectorSize(h C.uintptr_t) C.int {
	return C.int(fileOf(h).SectorSize())
}

//export goFileDeviceCharacteristics
func goFileDeviceCharacteristics(h C.uintptr_t) C.int {
	return C.int(fileOf(h).DeviceCharacteristics())
}
