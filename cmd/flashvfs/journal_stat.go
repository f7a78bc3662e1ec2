package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"go.gazette.dev/flashvfs/blockcache"
	mbp "go.gazette.dev/flashvfs/mainboilerplate"
	"go.gazette.dev/flashvfs/vfs"
)

type cmdJournalStat struct {
	Format string `long:"format" short:"o" choice:"table" choice:"yaml" default:"table" description:"Output format"`
}

func init() {
	Commands.AddCommand("", "journal", "Inspect rollback journals", "", &struct{}{})
	Commands.AddCommand("journal", "stat", "Load journals into memory and report their footprint", `
Load each named file through the VFS as an ephemeral main journal, and report
its logical size and the blocks the journal cache materialized to hold it.

All-zero ranges of a journal are elided by the cache and cost no memory. The
"elided" column reports the block-sized spans beneath the logical size which
were never materialized.

Results can be output in a variety of --format options:
yaml:  Prints a YAML sequence of journal statistics.
table: Prints as a table with human-readable sizes.
`, &cmdJournalStat{})
}

// journalStat is the memory footprint of a journal held by a blockcache.Cache.
type journalStat struct {
	Name          string `yaml:"name"`
	Size          int64  `yaml:"size"`
	Blocks        int    `yaml:"blocks"`
	ResidentBytes int64  `yaml:"resident_bytes"`
	ElidedBlocks  int64  `yaml:"elided_blocks"`
}

func (cmd *cmdJournalStat) Execute(args []string) error {
	if len(args) == 0 {
		return errors.New("expected at least one journal file")
	}
	var v = startup()

	var stats []journalStat
	for _, name := range args {
		var stat, err = statJournal(v, name)
		if err != nil {
			log.WithFields(log.Fields{"name": name, "err": err}).Error("failed to stat journal")
			return err
		}
		stats = append(stats, stat)
	}

	switch cmd.Format {
	case "table":
		outputTable(os.Stdout, stats)
	case "yaml":
		var b, err = yaml.Marshal(stats)
		mbp.Must(err, "failed to encode to yaml")
		_, _ = os.Stdout.Write(b)
	}
	return nil
}

// statJournal copies the file |name| of the VFS's Fs into a memory journal
// opened from |v|, and returns the resulting journalStat.
func statJournal(v *vfs.VFS, name string) (journalStat, error) {
	var src, _, err = v.Open(name, vfs.OpenReadOnly|vfs.OpenMainDB)
	if err != nil {
		return journalStat{}, err
	}
	defer src.Close()

	size, err := src.FileSize()
	if err != nil {
		return journalStat{}, err
	}

	dst, _, err := v.Open(name+"-journal", vfs.OpenReadWrite|vfs.OpenCreate|vfs.OpenMainJournal)
	if err != nil {
		return journalStat{}, err
	}
	defer dst.Close()

	if err = copyFile(dst, src, size); err != nil {
		return journalStat{}, err
	}

	var cache = vfs.Cache(dst)
	var spanned = (cache.Size() + blockcache.BlockSize - 1) / blockcache.BlockSize

	return journalStat{
		Name:          name,
		Size:          cache.Size(),
		Blocks:        cache.Len(),
		ResidentBytes: int64(cache.Len()) * blockcache.BlockSize,
		ElidedBlocks:  spanned - int64(cache.Len()),
	}, nil
}

// copyFile copies |size| bytes of |src| into |dst|, in chunks of a sector.
func copyFile(dst, src vfs.File, size int64) error {
	var buf = make([]byte, src.SectorSize())

	for offset := int64(0); offset < size; offset += int64(len(buf)) {
		var chunk = buf
		if rem := size - offset; rem < int64(len(chunk)) {
			chunk = chunk[:rem]
		}
		if _, err := src.ReadAt(chunk, offset); err != nil {
			return err
		}
		if _, err := dst.WriteAt(chunk, offset); err != nil {
			return err
		}
	}
	return nil
}

func outputTable(w io.Writer, stats []journalStat) {
	var table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Size", "Blocks", "Resident", "Elided"})

	for _, s := range stats {
		table.Append([]string{
			s.Name,
			humanize.IBytes(uint64(s.Size)),
			fmt.Sprintf("%d", s.Blocks),
			humanize.IBytes(uint64(s.ResidentBytes)),
			fmt.Sprintf("%d", s.ElidedBlocks),
		})
	}
	table.Render()
}
