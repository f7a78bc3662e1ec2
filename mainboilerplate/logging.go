package mainboilerplate

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// LogConfig configures the logger of flashvfs commands. Logs go to stderr,
// so that stdout carries only command output.
type LogConfig struct {
	Level  string `long:"level" env:"LEVEL" default:"warn" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal" description:"Logging level"`
	Format string `long:"format" env:"FORMAT" default:"text" choice:"json" choice:"text" choice:"color" description:"Logging output format"`
	Caller bool   `long:"caller" env:"CALLER" description:"Annotate log entries with their calling function"`
}

var logFormatters = map[string]func() log.Formatter{
	"json":  func() log.Formatter { return &log.JSONFormatter{} },
	"text":  func() log.Formatter { return &log.TextFormatter{DisableColors: true} },
	"color": func() log.Formatter { return &log.TextFormatter{ForceColors: true} },
}

// Apply the LogConfig to |logger|, which will write to |w|.
func (cfg LogConfig) Apply(logger *log.Logger, w io.Writer) error {
	var lvl, err = log.ParseLevel(cfg.Level)
	if err != nil {
		return errors.WithMessage(err, "log level")
	}
	var newFormatter, ok = logFormatters[cfg.Format]
	if !ok {
		return errors.Errorf("unknown log format %q", cfg.Format)
	}

	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(newFormatter())
	logger.SetReportCaller(cfg.Caller)
	return nil
}

// InitLog applies the LogConfig to the standard logger, and exits if it's invalid.
func InitLog(cfg LogConfig) {
	if err := cfg.Apply(log.StandardLogger(), os.Stderr); err != nil {
		log.WithField("err", err).Fatal("invalid log configuration")
	}
}
