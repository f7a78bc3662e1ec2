package mainboilerplate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Version and BuildDate are populated at link time:
//
//	-ldflags "-X go.gazette.dev/flashvfs/mainboilerplate.Version=..."
var (
	Version   = "development"
	BuildDate = "unknown"
)

// ConfigPaths returns candidate locations of the INI file |configName|, in
// order of preference: the working directory, then ~/.config/flashvfs.
func ConfigPaths(configName string) []string {
	var paths = []string{configName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "flashvfs", configName))
	}
	return paths
}

// ParseConfigFile parses the first of |paths| which exists in |fs| into
// |parser|, and returns its path. Options the parser doesn't know are
// ignored, so one file may configure several tools. If none of |paths|
// exist, ParseConfigFile returns an empty path and no error.
func ParseConfigFile(parser *flags.Parser, fs afero.Fs, paths []string) (string, error) {
	for _, path := range paths {
		var f, err = fs.Open(path)
		if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return "", errors.WithMessagef(err, "opening %s", path)
		}

		var prior = parser.Options
		parser.Options |= flags.IgnoreUnknown
		err = flags.NewIniParser(parser).Parse(f)
		parser.Options = prior
		_ = f.Close()

		if err != nil {
			return "", errors.WithMessagef(err, "parsing %s", path)
		}
		return path, nil
	}
	return "", nil
}

// MustParseConfig parses configuration from the INI file |configName|,
// if one is found at ConfigPaths, and then from environment variables and
// command-line arguments (which take precedence). It exits on any error.
func MustParseConfig(parser *flags.Parser, configName string) {
	if _, err := ParseConfigFile(parser, afero.NewOsFs(), ConfigPaths(configName)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	MustParseArgs(parser)
}

// MustParseArgs parses command-line arguments, running the selected
// command, and exits if either fails.
func MustParseArgs(parser *flags.Parser) {
	var _, err = parser.ParseArgs(os.Args[1:])
	if err == nil {
		return
	}

	var flagErr, ok = err.(*flags.Error)
	if !ok {
		// The command's Execute failed, and go-flags has printed its error.
		os.Exit(1)
	}
	switch flagErr.Type {
	case flags.ErrDuplicatedFlag, flags.ErrTag, flags.ErrInvalidTag, flags.ErrShortNameTooLong, flags.ErrMarshal:
		// The configuration struct itself is malformed.
		panic(err)
	case flags.ErrCommandRequired:
		writeUsage(parser)
		os.Exit(1)
	case flags.ErrHelp:
		if parser.Options&flags.PrintErrors == 0 {
			writeUsage(parser)
		}
		os.Exit(0)
	default:
		// go-flags has already described the input error.
		os.Exit(1)
	}
}

func writeUsage(parser *flags.Parser) {
	fmt.Fprintln(os.Stderr)
	parser.WriteHelp(os.Stderr)
	fmt.Fprintf(os.Stderr, "\nflashvfs %s, built %s.\n", Version, BuildDate)
}

// AddPrintConfigCmd adds a "print-config" command to |parser|, which writes
// the combined configuration of |configName|, environment variables, and
// flags to stdout in INI format.
func AddPrintConfigCmd(parser *flags.Parser, configName string) {
	_, _ = parser.AddCommand("print-config", "Print combined configuration and exit", `
print-config writes the configuration resulting from `+configName+`,
environment variables, and flags to stdout, in INI format. The output is
itself a valid `+configName+`.
`, &printConfig{parser: parser})
}

type printConfig struct {
	parser *flags.Parser
}

func (p *printConfig) Execute([]string) error {
	flags.NewIniParser(p.parser).Write(os.Stdout,
		flags.IniIncludeComments|flags.IniCommentDefaults|flags.IniIncludeDefaults)
	return nil
}
