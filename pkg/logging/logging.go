// Package logging provides levelled log output for fastgrowcut, optionally
// written to a rotating log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
)

// Config selects where log messages go. An empty Logfile keeps output on
// stderr.
type Config struct {
	Logfile string `yaml:"logfile"`
	MaxSize int    `yaml:"maxLogSize"` // megabytes
	MaxAge  int    `yaml:"maxLogAge"`  // days
}

var (
	mu      sync.Mutex
	verbose bool
	out     = log.New(os.Stderr, "", log.LstdFlags)
	rotator *lumberjack.Logger
)

// SetLogger routes log output to a rotating file if c names one.
func (c *Config) SetLogger() {
	mu.Lock()
	defer mu.Unlock()

	if rotator != nil {
		rotator.Close()
		rotator = nil
	}
	if c == nil || c.Logfile == "" {
		out.SetOutput(os.Stderr)
		return
	}
	rotator = &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize,
		MaxAge:   c.MaxAge,
	}
	out.SetOutput(rotator)
}

// SetOutput redirects log output to w. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out.SetOutput(w)
}

// SetVerbose turns Debugf output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// Verbose reports whether debug messages are written.
func Verbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	out.SetOutput(os.Stderr)
	return err
}

// Debugf records a message at debug level. Only written in verbose mode.
func Debugf(format string, args ...interface{}) {
	if !Verbose() {
		return
	}
	write("   DEBUG ", format, args...)
}

// Infof records a message at info level.
func Infof(format string, args ...interface{}) {
	write("    INFO ", format, args...)
}

// Warningf records a message at warning level.
func Warningf(format string, args ...interface{}) {
	write(" WARNING ", format, args...)
}

// Errorf records a message at error level.
func Errorf(format string, args ...interface{}) {
	write("   ERROR ", format, args...)
}

func write(level, format string, args ...interface{}) {
	out.Output(3, level+fmt.Sprintf(format, args...))
}
