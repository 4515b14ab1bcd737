package logger

import (
	"log"
	"strings"
)

// ToStdLogger returns a *log.Logger whose output is forwarded to l at info
// level, one message per write. It is used to hand a Logger to libraries
// that only accept the standard library type.
func ToStdLogger(l Logger) *log.Logger {
	if sl, ok := l.(*StandardLogger); ok {
		return sl.logger
	}
	return log.New(&writer{l: l}, "", 0)
}

type writer struct {
	l Logger
}

func (w *writer) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		w.l.Info("%s", msg)
	}
	return len(p), nil
}
