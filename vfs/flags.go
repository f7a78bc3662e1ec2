package vfs

// OpenFlag is a bit-set of SQLite open flags (SQLITE_OPEN_*) describing the
// intended use of an opened file.
type OpenFlag int

// Select SQLite open flags which the VFS inspects or reports.
const (
	OpenReadOnly      OpenFlag = 0x00000001
	OpenReadWrite     OpenFlag = 0x00000002
	OpenCreate        OpenFlag = 0x00000004
	OpenDeleteOnClose OpenFlag = 0x00000008
	OpenExclusive     OpenFlag = 0x00000010
	OpenMainDB        OpenFlag = 0x00000100
	OpenTempDB        OpenFlag = 0x00000200
	OpenTransientDB   OpenFlag = 0x00000400
	OpenMainJournal   OpenFlag = 0x00000800
	OpenTempJournal   OpenFlag = 0x00001000
	OpenSubJournal    OpenFlag = 0x00002000
	OpenSuperJournal  OpenFlag = 0x00004000
	OpenWAL           OpenFlag = 0x00080000
)

// AccessFlag is the kind of access check requested of VFS.Access.
type AccessFlag int

const (
	AccessExists    AccessFlag = 0
	AccessReadWrite AccessFlag = 1
	AccessRead      AccessFlag = 2
)

// LockLevel is a SQLite file lock level.
type LockLevel int

const (
	LockNone      LockLevel = 0
	LockShared    LockLevel = 1
	LockReserved  LockLevel = 2
	LockPending   LockLevel = 3
	LockExclusive LockLevel = 4
)

// SyncFlag is a bit-set of SQLite sync flags.
type SyncFlag int

const (
	SyncNormal   SyncFlag = 0x00002
	SyncFull     SyncFlag = 0x00003
	SyncDataOnly SyncFlag = 0x00010
)

// sectorSize is reported by every File. Flash erase granularity is larger,
// but SQLite only uses it to size journal padding.
const sectorSize = 512

// offsetMask restricts file offsets to the 31 bits addressable by the
// underlying flash file system.
const offsetMask = 0x7FFFFFFF

func maskOffset(offset int64) int64 { return offset & offsetMask }
