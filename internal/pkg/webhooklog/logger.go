package webhooklog

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Logger is a leveled logger pre-bound with a handler name and a
// per-request correlation ID so every line of one webhook invocation can
// be traced across systems.
type Logger struct {
	handler string
	cid     string
	fields  string
}

// New creates a logger for one webhook invocation with a fresh
// correlation ID.
func New(handler string) *Logger {
	return &Logger{
		handler: handler,
		cid:     uuid.New().String(),
	}
}

// CorrelationID returns the generated per-request ID.
func (l *Logger) CorrelationID() string {
	return l.cid
}

// With returns a child logger carrying additional key=value fields.
// Arguments are consumed in pairs; a trailing odd argument is ignored.
func (l *Logger) With(kv ...interface{}) *Logger {
	var b strings.Builder
	b.WriteString(l.fields)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return &Logger{handler: l.handler, cid: l.cid, fields: b.String()}
}

// Timer returns a func that logs the elapsed time since Timer was called.
func (l *Logger) Timer() func() {
	start := time.Now()
	return func() {
		l.Infof("handled in %dms", time.Since(start).Milliseconds())
	}
}

func (l *Logger) prefix() string {
	return fmt.Sprintf("[%s cid=%s]%s ", l.handler, l.cid, l.fields)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	log.Debugf(l.prefix()+format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	log.Infof(l.prefix()+format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	log.Warnf(l.prefix()+format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	log.Errorf(l.prefix()+format, args...)
}
