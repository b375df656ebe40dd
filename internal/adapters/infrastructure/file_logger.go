package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"geosynth.app/internal/ports"
	"geosynth.app/pkg/errors"
)

// FileLoggerAdapter appends JSON lines to a file. It backs the upstream call
// log so provider traffic can be audited apart from the service log.
type FileLoggerAdapter struct {
	filePath string
	minLevel int
	mutex    sync.Mutex
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

// NewFileLoggerAdapter creates the log directory if needed
func NewFileLoggerAdapter(logPath string) (*FileLoggerAdapter, error) {
	if logPath == "" {
		return nil, errors.NewConfigurationError("log file path cannot be empty", nil)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, errors.NewConfigurationError("failed to create log directory", err)
	}

	return &FileLoggerAdapter{
		filePath: logPath,
	}, nil
}

// WithMinLevel drops entries below the given level (DEBUG, INFO, WARN, ERROR)
func (f *FileLoggerAdapter) WithMinLevel(level string) *FileLoggerAdapter {
	if rank, ok := levelRank[level]; ok {
		f.minLevel = rank
	}
	return f
}

// Path returns the target file
func (f *FileLoggerAdapter) Path() string {
	return f.filePath
}

func (f *FileLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	f.writeLogEntry("DEBUG", msg, fields...)
}

func (f *FileLoggerAdapter) Info(msg string, fields ...ports.Field) {
	f.writeLogEntry("INFO", msg, fields...)
}

func (f *FileLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	f.writeLogEntry("WARN", msg, fields...)
}

func (f *FileLoggerAdapter) Error(msg string, fields ...ports.Field) {
	f.writeLogEntry("ERROR", msg, fields...)
}

func (f *FileLoggerAdapter) writeLogEntry(level, msg string, fields ...ports.Field) {
	if levelRank[level] < f.minLevel {
		return
	}

	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"message":   msg,
	}
	for _, field := range fields {
		if err, ok := field.Value.(error); ok {
			entry[field.Key] = err.Error()
			continue
		}
		entry[field.Key] = field.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fallback, _ := json.Marshal(map[string]interface{}{
			"timestamp": entry["timestamp"],
			"level":     "ERROR",
			"message":   "failed to marshal log entry",
			"original":  msg,
			"error":     err.Error(),
		})
		data = fallback
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.appendLine(data)
}

// appendLine must be called while holding the mutex
func (f *FileLoggerAdapter) appendLine(data []byte) {
	file, err := os.OpenFile(f.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", f.filePath, err)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
	}
}
