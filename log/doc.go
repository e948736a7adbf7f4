// Package log builds the structured loggers used by the cmdrpc commands.
//
// Every logger is a github.com/go-kit/log Logger. The format chooses how
// events are written: logfmt and json use the go-kit encoders, logrus sends
// events through a github.com/sirupsen/logrus Logger via the adapter in the
// logrus subpackage. Loggers carry a timestamp and the caller of Log, and are
// filtered by level with github.com/go-kit/log/level.
package log
