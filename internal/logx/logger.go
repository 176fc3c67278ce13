// Package logx is the structured logger used across the service. Code logs
// through Logger; the slog adapter is wired at startup and tests record
// entries instead.
package logx

import (
	"io"
	"log/slog"
	"time"
)

// Logger writes leveled entries with key-value fields.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field is one key-value pair of an entry.
type Field struct {
	Key   string
	Value any
}

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err stores the error text under "err". A nil error is kept as a nil value.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "err", Value: nil}
	}
	return Field{Key: "err", Value: err.Error()}
}

// Component tags every entry of l with the component name.
func Component(l Logger, name string) Logger {
	if l == nil {
		return Nop()
	}
	return l.With(String("component", name))
}

// discardLevel is above every level the adapter emits.
const discardLevel = slog.LevelError + 4

// Nop returns a Logger that drops everything.
func Nop() Logger {
	return NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: discardLevel})))
}
