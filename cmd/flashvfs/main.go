package main

import (
	"github.com/jessevdk/go-flags"
	"github.com/spf13/afero"

	"go.gazette.dev/flashvfs/blockcache"
	mbp "go.gazette.dev/flashvfs/mainboilerplate"
	"go.gazette.dev/flashvfs/vfs"
)

const iniFilename = "flashvfs.ini"

// Config is the top-level configuration shared by all sub-commands.
var Config = new(struct {
	VFS struct {
		Root        string                   `long:"root" env:"ROOT" description:"Root directory of the underlying file system (empty for the working directory)"`
		Elision     blockcache.ElisionPolicy `long:"elision" env:"ELISION" default:"unbacked" choice:"unbacked" choice:"always" description:"Elision policy of all-zero journal writes"`
		BlockLimit  int                      `long:"block-limit" env:"BLOCK_LIMIT" default:"0" description:"Maximum number of resident journal blocks (0 for unbounded)"`
		MaxPathname int                      `long:"max-pathname" env:"MAX_PATHNAME" default:"100" description:"Maximum length of a VFS path name"`
	} `group:"VFS" namespace:"vfs" env-namespace:"VFS"`

	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
})

// Commands collects the sub-commands of flashvfs.
var Commands = mbp.NewCommandRegistry()

func main() {
	var parser = flags.NewParser(Config, flags.Default)

	mbp.AddPrintConfigCmd(parser, iniFilename)

	parser.LongDescription = `flashvfs inspects files as seen through the flash VFS, and
encodes or decodes the compressed blobs of its SQL extension functions.

See --help pages of each sub-command for documentation and usage examples.
Optionally configure flashvfs with a '` + iniFilename + `' file in the current working directory,
or with '~/.config/flashvfs/` + iniFilename + `'. Use the 'print-config' sub-command to inspect
the tool's current configuration.
`
	mbp.Must(Commands.AddCommands("", parser.Command, true), "could not add subcommand")
	mbp.MustParseConfig(parser, iniFilename)
}

// startup initializes logging and diagnostics, and returns the configured VFS.
func startup() *vfs.VFS {
	mbp.InitLog(Config.Log)
	mbp.InitDiagnostics(Config.Diagnostics)

	var fs = afero.NewOsFs()
	if Config.VFS.Root != "" {
		fs = afero.NewBasePathFs(fs, Config.VFS.Root)
	}
	return newVFS(fs, Config.VFS.Elision, Config.VFS.BlockLimit, Config.VFS.MaxPathname)
}

func newVFS(fs afero.Fs, elision blockcache.ElisionPolicy, blockLimit, maxPathname int) *vfs.VFS {
	var v = vfs.New("flashvfs", fs)
	v.Elision = elision
	if maxPathname != 0 {
		v.MaxPathname = maxPathname
	}
	if blockLimit != 0 {
		v.Allocator = blockcache.NewBoundedAllocator(blockLimit)
	}
	return v
}
