// Package utils holds small shared infrastructure, currently the rotating
// process log.
package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	logFileName   = "helperbot.log"
	logMaxSize    = 10 * 1024 * 1024
	logMaxBackups = 5
)

// RotatableLogger is an io.Writer over a log file that rotates the file
// once it grows past MaxSize, keeping up to MaxBackups numbered backups.
type RotatableLogger struct {
	Filename   string
	MaxSize    int64 // bytes
	MaxBackups int

	mu   sync.Mutex
	file *os.File
}

// NewRotatableLogger creates a logger writing to filename.
func NewRotatableLogger(filename string, maxSize int64, maxBackups int) *RotatableLogger {
	return &RotatableLogger{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}
}

func (l *RotatableLogger) open() error {
	file, err := os.OpenFile(l.Filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	return nil
}

func (l *RotatableLogger) close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// rotate shifts helperbot.log.N to .N+1, the live file to .1, and reopens.
func (l *RotatableLogger) rotate() error {
	if err := l.close(); err != nil {
		return err
	}

	for i := l.MaxBackups - 1; i >= 1; i-- {
		os.Rename(
			fmt.Sprintf("%s.%d", l.Filename, i),
			fmt.Sprintf("%s.%d", l.Filename, i+1),
		)
	}
	if l.MaxBackups > 0 {
		os.Rename(l.Filename, fmt.Sprintf("%s.1", l.Filename))
	}

	return l.open()
}

func (l *RotatableLogger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		if err := l.open(); err != nil {
			// Logging must keep working even if the file cannot be opened.
			return os.Stderr.Write(p)
		}
	}

	info, err := l.file.Stat()
	if err == nil && info.Size() > l.MaxSize {
		if err := l.rotate(); err != nil {
			return 0, err
		}
	}

	return l.file.Write(p)
}

// SetupLogger points the global log package at stderr plus a rotating
// file under logDir.
func SetupLogger(logDir string) {
	os.MkdirAll(logDir, 0755)

	logger := NewRotatableLogger(filepath.Join(logDir, logFileName), logMaxSize, logMaxBackups)

	mw := io.MultiWriter(os.Stderr, logger)
	log.SetOutput(mw)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}
