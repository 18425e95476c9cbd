package cmdutil

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type loggerConfig struct {
	level  string
	format string
}

var loggerConfigInst = loggerConfig{
	level:  zerolog.InfoLevel.String(),
	format: "console",
}

func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&loggerConfigInst.level,
		"level",
		loggerConfigInst.level,
		"what level to log at - maps to zerolog.Level",
	)
	cmd.PersistentFlags().StringVar(
		&loggerConfigInst.format,
		"log-format",
		loggerConfigInst.format,
		"log output format, either console or json",
	)
}

// Logger returns the logger configured by flags. Logs go to stderr so that
// reports printed to stdout stay clean.
func Logger() (zerolog.Logger, error) {
	return newLogger(os.Stderr, loggerConfigInst)
}

func newLogger(out io.Writer, cfg loggerConfig) (zerolog.Logger, error) {
	var w io.Writer
	switch cfg.format {
	case "console":
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = out
		})
	case "json":
		w = out
	default:
		return zerolog.Nop(), errors.Newf("unknown log format %q", cfg.format)
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(cfg.level)
	if err != nil {
		return logger, err
	}
	return logger.Level(lvl), err
}
