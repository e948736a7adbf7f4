package log

import (
	"fmt"
	"io"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/sirupsen/logrus"

	logrusadapter "github.com/go-kit/cmdrpc/log/logrus"
)

// Formats lists the accepted values for the format argument of NewLogger.
var Formats = []string{"logfmt", "json", "logrus"}

// NewLogger returns a concurrency-safe logger that writes events to w in the
// given format.
func NewLogger(w io.Writer, format string) (kitlog.Logger, error) {
	var logger kitlog.Logger
	switch strings.ToLower(format) {
	case "", "logfmt":
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	case "json":
		logger = kitlog.NewJSONLogger(kitlog.NewSyncWriter(w))
	case "logrus":
		l := logrus.New()
		l.Out = w
		l.Level = logrus.DebugLevel
		l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
		logger = logrusadapter.NewLogger(l)
	default:
		return nil, fmt.Errorf("unknown log format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	return logger, nil
}

// ParseLevel returns the filter option that lets events at lvl and above
// through.
func ParseLevel(lvl string) (level.Option, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, fmt.Errorf("unknown log level %q", lvl)
}

// New is NewLogger followed by a level filter for lvl, with every event
// annotated with ts and caller.
func New(w io.Writer, format, lvl string) (kitlog.Logger, error) {
	allow, err := ParseLevel(lvl)
	if err != nil {
		return nil, err
	}
	logger, err := NewLogger(w, format)
	if err != nil {
		return nil, err
	}
	logger = level.NewFilter(logger, allow)
	return kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller), nil
}
