package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "quadsim.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes the standard logger to logs/quadsim.log when debug is set, otherwise discards it
// stdout and stderr belong to the terminal UI and are never written by the logger
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		stem := strings.TrimSuffix(logFileName, filepath.Ext(logFileName))
		rotated := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", stem, time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			// Truncate rather than grow without bound
			os.Truncate(logPath, 0)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("logging started, pid %d", os.Getpid())
	return f
}
