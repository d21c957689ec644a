package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(io.Discard)
	debug  bool
)

func init() {
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

// Init configures JSONL logging into log/app.log.
func Init(baseDir string) error {
	logDir := filepath.Join(baseDir, "log")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	SetOutput(f)
	return nil
}

// SetOutput redirects log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = zerolog.New(w).With().Timestamp().Logger()
	mu.Unlock()
}

func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

func Debug(msg string, fields map[string]any) {
	mu.RLock()
	enabled := debug
	mu.RUnlock()
	if !enabled {
		return
	}
	write(zerolog.DebugLevel, msg, fields)
}

func Info(msg string, fields map[string]any) {
	write(zerolog.InfoLevel, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write(zerolog.WarnLevel, msg, fields)
}

func Error(msg string, fields map[string]any) {
	write(zerolog.ErrorLevel, msg, fields)
}

func write(level zerolog.Level, msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	ev := l.WithLevel(level)
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(msg)
}
