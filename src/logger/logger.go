// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// Verification commands write results to stdout and diagnostics through a
// Logger, so the same code can run with human-readable or JSON diagnostics.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stderr, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// Level is the severity attached to JSON log entries.
type Level string

// Log levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// JSONLogger implements Logger with one JSON object per line. Each entry
// carries a level, a message and the logger's fields, which makes it
// suitable for log shippers when the verifier runs in batch jobs.
//
// JSONLogger is safe for concurrent use by multiple goroutines. Loggers
// derived with [JSONLogger.With] share the parent's output.
type JSONLogger struct {
	out    *output
	level  Level
	fields map[string]any
	silent bool
}

// output is the writer shared by a logger and its derivatives.
type output struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewJSONLogger creates a new JSON logger writing to writer.
// A nil writer discards output; silent suppresses it entirely.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		out:    &output{writer: writer},
		level:  LevelInfo,
		silent: silent,
	}
}

// With returns a logger that adds key to every entry. The receiver is not
// modified.
func (j *JSONLogger) With(key string, value any) *JSONLogger {
	fields := make(map[string]any, len(j.fields)+1)
	maps.Copy(fields, j.fields)
	fields[key] = value
	return &JSONLogger{out: j.out, level: j.level, fields: fields, silent: j.silent}
}

// WithLevel returns a logger whose entries carry level.
func (j *JSONLogger) WithLevel(level Level) *JSONLogger {
	return &JSONLogger{out: j.out, level: level, fields: j.fields, silent: j.silent}
}

// Printf formats and logs a structured message.
// Output is suppressed if silent mode is enabled.
func (j *JSONLogger) Printf(format string, v ...any) {
	if j.silent {
		return
	}
	j.write(fmt.Sprintf(format, v...))
}

// Println logs a structured message built with fmt.Sprint semantics.
// Output is suppressed if silent mode is enabled.
func (j *JSONLogger) Println(v ...any) {
	if j.silent {
		return
	}
	j.write(fmt.Sprint(v...))
}

// SetOutput sets the output destination for the logger and every logger
// derived from it. A nil writer discards output.
func (j *JSONLogger) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	j.out.mu.Lock()
	j.out.writer = w
	j.out.mu.Unlock()
}

func (j *JSONLogger) write(msg string) {
	entry := make(map[string]any, len(j.fields)+2)
	maps.Copy(entry, j.fields)
	entry["level"] = j.level
	entry["message"] = msg

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	// Encode appends the newline.
	if err := json.NewEncoder(buf).Encode(entry); err != nil {
		return
	}

	j.out.mu.Lock()
	_, _ = buf.WriteTo(j.out.writer)
	j.out.mu.Unlock()
}
