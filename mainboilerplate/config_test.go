package mainboilerplate

import (
	"bytes"
	"testing"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	VFS struct {
		Root       string `long:"root"`
		BlockLimit int    `long:"block-limit" default:"0"`
	} `group:"VFS" namespace:"vfs"`
	Log LogConfig `group:"Logging" namespace:"log"`
}

func TestParseConfigFile(t *testing.T) {
	var fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/.config/flashvfs/flashvfs.ini", []byte(`
[VFS]
root = /flash
block-limit = 128

[Logging]
level = debug

[SomeOtherTool]
unknown = ignored
`), 0644))

	var cfg testConfig
	var parser = flags.NewParser(&cfg, flags.Default)

	// The first path doesn't exist, and is skipped.
	var path, err = ParseConfigFile(parser, fs,
		[]string{"flashvfs.ini", "/home/.config/flashvfs/flashvfs.ini"})
	require.NoError(t, err)
	require.Equal(t, "/home/.config/flashvfs/flashvfs.ini", path)
	require.Equal(t, "/flash", cfg.VFS.Root)
	require.Equal(t, 128, cfg.VFS.BlockLimit)
	require.Equal(t, "debug", cfg.Log.Level)

	// Unknown options were ignored only while parsing the file.
	require.Zero(t, parser.Options&flags.IgnoreUnknown)

	// Flags take precedence over the file.
	_, err = parser.ParseArgs([]string{"--vfs.block-limit=64"})
	require.NoError(t, err)
	require.Equal(t, 64, cfg.VFS.BlockLimit)
	require.Equal(t, "/flash", cfg.VFS.Root)

	// No file is not an error.
	path, err = ParseConfigFile(parser, fs, []string{"missing.ini"})
	require.NoError(t, err)
	require.Equal(t, "", path)

	// A malformed file is.
	require.NoError(t, afero.WriteFile(fs, "bad.ini", []byte("[VFS]\nblock-limit = many\n"), 0644))
	_, err = ParseConfigFile(parser, fs, []string{"bad.ini"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing bad.ini")
}

func TestConfigPaths(t *testing.T) {
	t.Setenv("HOME", "/home/flash")
	require.Equal(t, []string{
		"flashvfs.ini",
		"/home/flash/.config/flashvfs/flashvfs.ini",
	}, ConfigPaths("flashvfs.ini"))
}

func TestLogConfigApply(t *testing.T) {
	var logger = log.New()
	var buf bytes.Buffer

	require.NoError(t, LogConfig{Level: "info", Format: "json"}.Apply(logger, &buf))
	require.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.WithField("vfs", "flashvfs").Debug("dropped")
	logger.WithField("vfs", "flashvfs").Info("kept")
	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), `"vfs":"flashvfs"`)
	require.Contains(t, buf.String(), `"msg":"kept"`)

	require.NoError(t, LogConfig{Level: "trace", Format: "text", Caller: true}.Apply(logger, &buf))
	require.Equal(t, log.TraceLevel, logger.GetLevel())
	require.True(t, logger.ReportCaller)

	require.Error(t, LogConfig{Level: "loud", Format: "text"}.Apply(logger, &buf))
	require.EqualError(t, LogConfig{Level: "warn", Format: "xml"}.Apply(logger, &buf),
		`unknown log format "xml"`)
}
