package main

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"go.gazette.dev/flashvfs/blockcache"
	"go.gazette.dev/flashvfs/codecs"
	"go.gazette.dev/flashvfs/sqlext"
)

func TestStatJournalElidesZeroBlocks(t *testing.T) {
	var fs = afero.NewMemMapFs()

	// 1000 bytes, of which only the first and last blocks hold content.
	var content = make([]byte, 1000)
	content[0] = 'a'
	content[999] = 'z'
	require.NoError(t, afero.WriteFile(fs, "db", content, 0644))

	var alloc = blockcache.NewBoundedAllocator(100)
	var v = newVFS(fs, blockcache.ElideUnbacked, 0, 0)
	v.Allocator = alloc

	var stat, err = statJournal(v, "db")
	require.NoError(t, err)
	require.Equal(t, journalStat{
		Name:          "db",
		Size:          1000,
		Blocks:        2,
		ResidentBytes: 2 * blockcache.BlockSize,
		ElidedBlocks:  14,
	}, stat)

	// The journal was closed, releasing its blocks.
	require.Equal(t, 0, alloc.Live())
	require.Equal(t, 2, alloc.Allocated())
}

func TestStatJournalErrors(t *testing.T) {
	var fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "db", bytes.Repeat([]byte{1}, 256), 0644))

	var _, err = statJournal(newVFS(fs, blockcache.ElideUnbacked, 0, 0), "missing")
	require.Error(t, err)

	// A block limit too small for the journal fails with out-of-memory.
	_, err = statJournal(newVFS(fs, blockcache.ElideUnbacked, 2, 0), "db")
	require.EqualError(t, err, "writing 256 bytes of db-journal at 0: block allocation failed: out of memory")
}

func TestStatOutput(t *testing.T) {
	var stats = []journalStat{{Name: "db", Size: 1 << 20, Blocks: 3, ResidentBytes: 192, ElidedBlocks: 16381}}

	var buf bytes.Buffer
	outputTable(&buf, stats)
	require.Contains(t, buf.String(), "1.0 MiB")
	require.Contains(t, buf.String(), "16381")

	b, err := yaml.Marshal(stats)
	require.NoError(t, err)
	require.Equal(t, strings.TrimSpace(`
- name: db
  size: 1048576
  blocks: 3
  resident_bytes: 192
  elided_blocks: 16381
`), strings.TrimSpace(string(b)))
}

func TestTransformBlob(t *testing.T) {
	var in = bytes.Repeat([]byte("flash "), 100)

	var blob bytes.Buffer
	require.NoError(t, transformBlob(bytes.NewReader(in), &blob, func(p []byte) ([]byte, error) {
		return codecs.EncodeBlob(codecs.SNAPPY, p)
	}))
	require.True(t, blob.Len() < len(in))

	var out bytes.Buffer
	require.NoError(t, transformBlob(&blob, &out, func(p []byte) ([]byte, error) {
		return codecs.DecodeBlob(codecs.SNAPPY, p)
	}))
	require.Equal(t, in, out.Bytes())

	require.Equal(t, codecs.ErrShortBlob, transformBlob(strings.NewReader("x"), &out,
		func(p []byte) ([]byte, error) { return codecs.DecodeBlob(codecs.SNAPPY, p) }))
}

func TestRunStatements(t *testing.T) {
	sqlext.Register("sqlite3_flashvfs_cmd_test", codecs.SNAPPY)

	var db, err = sql.Open("sqlite3_flashvfs_cmd_test", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	var buf bytes.Buffer
	require.NoError(t, runStatements(&buf, db, []string{
		`CREATE TABLE r (id INTEGER PRIMARY KEY, payload BLOB)`,
		`INSERT INTO r(id, payload) VALUES (1, flash_compress('temperature=21.5')), (2, NULL)`,
		`SELECT id, flash_decompress(payload), x'00ff' FROM r ORDER BY id`,
	}))
	var out = buf.String()
	require.Contains(t, out, "temperature=21.5")
	require.Contains(t, out, "NULL")
	require.Contains(t, out, "x'00ff'")

	err = runStatements(&buf, db, []string{`SELECT * FROM missing`})
	require.Error(t, err)
	require.Contains(t, err.Error(), `executing "SELECT * FROM missing"`)
}
