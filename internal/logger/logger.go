package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Logger interface defines the logging methods
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	// Named returns a logger that prefixes every message with the given stage name.
	Named(stage string) Logger
}

// ConsoleLogger writes human readable lines to stdout/stderr.
type ConsoleLogger struct {
	state *consoleState
	stage string
}

// consoleState is shared between a logger and all of its named children,
// so that verbose/quiet switches apply to every stage at once.
type consoleState struct {
	mu          sync.Mutex
	output      io.Writer
	errOut      io.Writer
	colors      bool
	verboseMode bool
	quietMode   bool
}

var (
	instance *ConsoleLogger
	once     sync.Once
)

// GetLogger returns the process wide console logger.
func GetLogger() *ConsoleLogger {
	once.Do(func() {
		instance = New(os.Stdout, os.Stderr)
		// Enable colors only if stdout is a terminal
		instance.state.colors = term.IsTerminal(int(os.Stdout.Fd()))
	})
	return instance
}

// New creates a console logger writing regular messages to out and errors to errOut.
func New(out, errOut io.Writer) *ConsoleLogger {
	return &ConsoleLogger{state: &consoleState{output: out, errOut: errOut}}
}

func SetVerbose(verbose bool) { GetLogger().SetVerbose(verbose) }
func IsVerbose() bool         { return GetLogger().IsVerbose() }
func SetQuiet(quiet bool)     { GetLogger().SetQuiet(quiet) }
func IsQuiet() bool           { return GetLogger().IsQuiet() }

func Info(format string, args ...any)    { GetLogger().Info(format, args...) }
func Debug(format string, args ...any)   { GetLogger().Debug(format, args...) }
func Success(format string, args ...any) { GetLogger().Success(format, args...) }
func Warn(format string, args ...any)    { GetLogger().Warn(format, args...) }
func Error(format string, args ...any)   { GetLogger().Error(format, args...) }

// Named returns a stage scoped child of the process wide logger.
func Named(stage string) Logger { return GetLogger().Named(stage) }

// -------------------- Implementation --------------------

func (l *ConsoleLogger) Named(stage string) Logger {
	return &ConsoleLogger{state: l.state, stage: stage}
}

func (l *ConsoleLogger) SetOutput(out io.Writer) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.output = out
}

func (l *ConsoleLogger) SetErrOutput(out io.Writer) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.errOut = out
}

func (l *ConsoleLogger) SetVerbose(enabled bool) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.verboseMode = enabled
}

func (l *ConsoleLogger) IsVerbose() bool {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.verboseMode
}

func (l *ConsoleLogger) SetQuiet(enabled bool) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.quietMode = enabled
}

func (l *ConsoleLogger) IsQuiet() bool {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.quietMode
}

type level struct {
	tag   string
	color string
	err   bool
}

var (
	levelDebug   = level{tag: "DEBUG", color: grayColor}
	levelInfo    = level{tag: "INFO", color: blueColor}
	levelSuccess = level{tag: "SUCCESS", color: greenColor}
	levelWarn    = level{tag: "WARN", color: yellowColor}
	levelError   = level{tag: "ERROR", color: redColor, err: true}
)

const (
	blueColor   = "\033[34m"
	greenColor  = "\033[32m"
	yellowColor = "\033[33m"
	redColor    = "\033[31m"
	grayColor   = "\033[90m"
	resetColor  = "\033[0m"
)

func (l *ConsoleLogger) log(lv level, format string, args ...any) {
	s := l.state
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case lv == levelDebug && !s.verboseMode:
		return
	case !lv.err && lv != levelDebug && s.quietMode:
		return
	}

	out := s.output
	if lv.err {
		out = s.errOut
	}

	prefix := lv.tag
	if lv == levelDebug {
		prefix = fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05.000"), lv.tag)
	}
	if l.stage != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, l.stage)
	}

	msg := fmt.Sprintf(format, args...)
	if s.colors {
		fmt.Fprintf(out, "%s%s %s%s\n", lv.color, prefix, msg, resetColor)
	} else {
		fmt.Fprintf(out, "%s %s\n", prefix, msg)
	}
}

func (l *ConsoleLogger) Info(format string, args ...any)    { l.log(levelInfo, format, args...) }
func (l *ConsoleLogger) Debug(format string, args ...any)   { l.log(levelDebug, format, args...) }
func (l *ConsoleLogger) Success(format string, args ...any) { l.log(levelSuccess, format, args...) }
func (l *ConsoleLogger) Warn(format string, args ...any)    { l.log(levelWarn, format, args...) }
func (l *ConsoleLogger) Error(format string, args ...any)   { l.log(levelError, format, args...) }
