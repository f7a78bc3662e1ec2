package main

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"go.gazette.dev/flashvfs/codecs"
	"go.gazette.dev/flashvfs/sqlext"
	"go.gazette.dev/flashvfs/sqlitevfs"
)

const sqlDriver = "sqlite3_flashvfs"

type cmdSQL struct {
	Codec codecs.CompressionCodec `long:"codec" default:"lz4" description:"Compression codec of flash_compress and flash_decompress"`
}

func init() {
	Commands.AddCommand("", "sql", "Execute SQL against a database through the VFS", `
Open a SQLite database through the flash VFS, and execute each statement
in turn, printing the rows of any which return them. Rollback journals of
the database are held in memory, and never reach the file system.

The flash_compress and flash_decompress functions are available:

>    flashvfs sql readings.db \
>        "CREATE TABLE IF NOT EXISTS r (id INTEGER PRIMARY KEY, payload BLOB)" \
>        "INSERT INTO r(payload) VALUES (flash_compress('temperature=21.5'))" \
>        "SELECT id, flash_decompress(payload) FROM r"

flashvfs must be built with the "libsqlite3" tag for this command.
`, &cmdSQL{})
}

func (cmd *cmdSQL) Execute(args []string) error {
	if len(args) < 2 {
		return errors.New("expected a database and at least one statement")
	}
	var v = startup()

	if err := sqlitevfs.Register(v, false); err != nil {
		return err
	}
	defer sqlitevfs.Unregister(v)
	sqlext.Register(sqlDriver, cmd.Codec)

	var db, err = sql.Open(sqlDriver, fmt.Sprintf("file:%s?vfs=%s", args[0], v.Name))
	if err != nil {
		return errors.WithMessage(err, "opening database")
	}
	// VFS locks are no-ops, so all statements share one connection.
	db.SetMaxOpenConns(1)

	if err = runStatements(os.Stdout, db, args[1:]); err != nil {
		log.WithFields(log.Fields{"database": args[0], "err": err}).Error("failed to execute")
		_ = db.Close()
		return err
	}
	return db.Close()
}

// runStatements executes each of |statements| against |db|, writing the rows
// of those returning columns to |w| as tables.
func runStatements(w io.Writer, db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		var rows, err = db.Query(stmt)
		if err != nil {
			return errors.WithMessagef(err, "executing %q", stmt)
		}
		if err = outputRows(w, rows); err != nil {
			return errors.WithMessagef(err, "reading rows of %q", stmt)
		}
	}
	return nil
}

func outputRows(w io.Writer, rows *sql.Rows) error {
	defer rows.Close()

	var columns, err = rows.Columns()
	if err != nil {
		return err
	} else if len(columns) == 0 {
		// Statements run as rows are stepped.
		for rows.Next() {
		}
		return rows.Err()
	}

	var table = tablewriter.NewWriter(w)
	table.SetHeader(columns)

	var values = make([]interface{}, len(columns))
	var ptrs = make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return err
		}
		var row = make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		table.Append(row)
	}
	if err = rows.Err(); err != nil {
		return err
	}
	table.Render()
	return nil
}

// formatValue renders a column value. BLOBs which aren't text print as hex.
func formatValue(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		if utf8.Valid(vv) {
			return string(vv)
		}
		return "x'" + hex.EncodeToString(vv) + "'"
	default:
		return fmt.Sprint(vv)
	}
}
