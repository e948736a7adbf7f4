// Package logrus provides an adapter to the
// go-kit log.Logger interface.
package logrus

import (
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	logrus.FieldLogger
	logrus.Level
}

var errMissingValue = errors.New("(MISSING)")

// NewLogger returns a go-kit log.Logger that sends log events to a Logrus
// logger. Events are logged at info level unless they carry a go-kit level.
func NewLogger(logger logrus.FieldLogger) log.Logger {
	return &logrusLogger{logger, logrus.InfoLevel}
}

// NewLoggerWithLevel is NewLogger with a different default level.
func NewLoggerWithLevel(logger logrus.FieldLogger, level logrus.Level) log.Logger {
	return &logrusLogger{logger, level}
}

// Log implements log.Logger. A "level" key selects the logrus level and a
// "msg" key becomes the entry message; every other pair becomes a field.
func (l logrusLogger) Log(keyvals ...interface{}) error {
	var (
		fields = logrus.Fields{}
		lvl    = l.Level
		msg    string
	)
	for i := 0; i < len(keyvals); i += 2 {
		k := fmt.Sprint(keyvals[i])
		if i+1 >= len(keyvals) {
			fields[k] = errMissingValue
			continue
		}
		v := keyvals[i+1]
		switch k {
		case "level":
			if parsed, err := logrus.ParseLevel(fmt.Sprint(v)); err == nil {
				lvl = parsed
				continue
			}
		case "msg":
			msg = fmt.Sprint(v)
			continue
		}
		fields[k] = v
	}

	entry := l.WithFields(fields)
	switch lvl {
	case logrus.DebugLevel, logrus.TraceLevel:
		entry.Debug(msg)
	case logrus.WarnLevel:
		entry.Warn(msg)
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		entry.Error(msg)
	default:
		entry.Info(msg)
	}
	return nil
}
