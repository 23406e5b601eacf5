package logger

import (
	"io"
	"os"
	"sort"

	"github.com/phuslu/log"

	"github.com/doeshing/vino-go/internal/ports"
)

// Logger routes application logs through phuslu/log. Output goes to stderr so
// it never interleaves with answers written to stdout.
type Logger struct {
	log *log.Logger
}

// New creates a Logger. Verbose lowers the level from warn to debug.
func New(verbose bool) *Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter creates a Logger writing human-readable lines to w.
func NewWithWriter(w io.Writer, verbose bool) *Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return &Logger{log: &log.Logger{
		Level:  level,
		Writer: &log.ConsoleWriter{Writer: w},
	}}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	withFields(l.log.Debug(), fields).Msg(msg)
}

func (l *Logger) Info(msg string, fields map[string]interface{}) {
	withFields(l.log.Info(), fields).Msg(msg)
}

func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	withFields(l.log.Warn(), fields).Msg(msg)
}

func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	withFields(l.log.Error().Err(err), fields).Msg(msg)
}

// withFields appends fields in key order. A nil entry means the level is disabled.
func withFields(e *log.Entry, fields map[string]interface{}) *log.Entry {
	if e == nil || len(fields) == 0 {
		return e
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		e = e.Any(key, fields[key])
	}
	return e
}

type nop struct{}

// Nop returns a logger that discards everything.
func Nop() ports.Logger { return nop{} }

func (nop) Debug(string, map[string]interface{})        {}
func (nop) Info(string, map[string]interface{})         {}
func (nop) Warn(string, map[string]interface{})         {}
func (nop) Error(string, error, map[string]interface{}) {}

var _ ports.Logger = (*Logger)(nil)
