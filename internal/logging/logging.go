package logging

import (
	"io"
	"os"
	"strings"

	"github.com/covalenthq/lumberjack"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// ParseLevel maps LOG_LEVEL values onto gommon levels. Unknown values mean INFO.
func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}

// Setup points the package logger and the Echo logger at stdout, teed to a
// rotating file when file is set. The returned writer is meant for the
// request logger middleware; close the returned closer on shutdown.
func Setup(e *echo.Echo, level, file string) (io.Writer, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotating)
		closer = rotating
	}

	lvl := ParseLevel(level)
	log.SetLevel(lvl)
	log.SetOutput(out)

	if e != nil {
		e.Logger.SetLevel(lvl)
		e.Logger.SetOutput(out)
	}

	return out, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
