//go:build cgo && libsqlite3

package sqlitevfs

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.gazette.dev/flashvfs/blockcache"
	"go.gazette.dev/flashvfs/codecs"
	"go.gazette.dev/flashvfs/sqlext"
	"go.gazette.dev/flashvfs/vfs"
)

const testDriver = "sqlite3_sqlitevfs_test"

func init() { sqlext.Register(testDriver, codecs.SNAPPY) }

func TestCommittedJournalNeverReachesFs(t *testing.T) {
	var fs, alloc, v = newTestVFS(t, "flashvfs-commit", 1<<16)
	var db = openTestDB(t, v)

	var _, err = db.Exec(`CREATE TABLE readings (id INTEGER PRIMARY KEY, payload BLOB);`)
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	for i := 0; i != 200; i++ {
		_, err = tx.Exec(`INSERT INTO readings(id, payload) VALUES (?, flash_compress(?));`,
			i, strings.Repeat(fmt.Sprintf("reading %d;", i), 20))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	// Rewriting existing pages journals their prior content.
	_, err = db.Exec(`UPDATE readings SET payload = flash_compress('updated') WHERE id % 2 = 0;`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM readings
		WHERE CAST(flash_decompress(payload) AS TEXT) = 'updated';`).Scan(&count))
	require.Equal(t, 100, count)
	require.NoError(t, db.Close())

	// The database is on the Fs, but its journal never was.
	info, err := fs.Stat("test.db")
	require.NoError(t, err)
	require.True(t, info.Size() > 0)

	exists, err := afero.Exists(fs, "test.db-journal")
	require.NoError(t, err)
	require.False(t, exists)

	// Journals were held in Blocks, all of which were released.
	require.True(t, alloc.Allocated() > 0)
	require.Equal(t, 0, alloc.Live())
}

func TestRollbackPlaysBackMemoryJournal(t *testing.T) {
	var _, alloc, v = newTestVFS(t, "flashvfs-rollback", 1<<16)
	var db = openTestDB(t, v)
	defer db.Close()

	// A tiny page cache forces SQLite to write changes into the database
	// file mid-transaction, and to undo them from the journal on ROLLBACK.
	var _, err = db.Exec(`
		PRAGMA cache_size = 2;
		CREATE TABLE kv (k INTEGER PRIMARY KEY, v TEXT);
	`)
	require.NoError(t, err)

	tx, err := db.Begin()
	require.NoError(t, err)
	for k := 0; k != 500; k++ {
		_, err = tx.Exec(`INSERT INTO kv(k, v) VALUES (?, ?);`,
			k, fmt.Sprintf("original-%d-%s", k, strings.Repeat("x", 100)))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())

	tx, err = db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec(`UPDATE kv SET v = 'changed';`)
	require.NoError(t, err)
	_, err = tx.Exec(`DELETE FROM kv WHERE k >= 250;`)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv WHERE v LIKE 'original-%';`).Scan(&count))
	require.Equal(t, 500, count)

	var check string
	require.NoError(t, db.QueryRow(`PRAGMA integrity_check;`).Scan(&check))
	require.Equal(t, "ok", check)

	require.NoError(t, db.Close())
	require.Equal(t, 0, alloc.Live())
}

func TestJournalAllocationFailureFailsTheStatement(t *testing.T) {
	var _, _, v = newTestVFS(t, "flashvfs-nomem", 1<<16)
	var db = openTestDB(t, v)
	defer db.Close()

	var _, err = db.Exec(`CREATE TABLE kv (k INTEGER PRIMARY KEY, v TEXT);`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO kv(k, v) SELECT value, hex(randomblob(200))
		FROM (WITH RECURSIVE c(value) AS (SELECT 1 UNION ALL SELECT value+1 FROM c LIMIT 200) SELECT value FROM c);`)
	require.NoError(t, err)

	// Permit only a couple of journal Blocks: too few to hold the prior
	// content of the pages this UPDATE rewrites.
	v.Allocator = blockcache.NewBoundedAllocator(2)

	_, err = db.Exec(`UPDATE kv SET v = 'changed';`)
	require.Error(t, err)
}

func TestRegistration(t *testing.T) {
	var v = vfs.New("flashvfs-registration", afero.NewMemMapFs())

	require.NoError(t, Register(v, false))
	require.True(t, vfs.Find(v.Name) == v)
	require.EqualError(t, Register(v, false), `VFS "flashvfs-registration" is already registered`)

	Unregister(v)
	require.Nil(t, vfs.Find(v.Name))

	// Connections may no longer name the VFS.
	var db, err = sql.Open(testDriver, "file:test.db?vfs="+v.Name)
	require.NoError(t, err)
	require.Error(t, db.Ping())
	require.NoError(t, db.Close())

	// It may be registered again.
	require.NoError(t, Register(v, false))
	Unregister(v)

	require.EqualError(t, Register(vfs.New("", afero.NewMemMapFs()), false), "VFS Name is empty")
}

func newTestVFS(t *testing.T, name string, limit int) (afero.Fs, *blockcache.BoundedAllocator, *vfs.VFS) {
	var fs = afero.NewMemMapFs()
	var alloc = blockcache.NewBoundedAllocator(limit)
	var v = vfs.New(name, fs)
	v.Allocator = alloc

	require.NoError(t, Register(v, false))
	t.Cleanup(func() { Unregister(v) })
	return fs, alloc, v
}

func openTestDB(t *testing.T, v *vfs.VFS) *sql.DB {
	var db, err = sql.Open(testDriver, "file:test.db?vfs="+v.Name)
	require.NoError(t, err)
	// Locks of the VFS are no-ops, so only one connection may use it.
	db.SetMaxOpenConns(1)
	return db
}
