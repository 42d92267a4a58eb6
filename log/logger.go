package log

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

// Level controls which messages reach the output sink.
type Level logging.Level

// The levels that can be passed to SetLevel and SetModuleLevel.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levelNames = map[string]Level{
	"debug":   Debug,
	"info":    Info,
	"notice":  Notice,
	"warning": Warning,
	"error":   Error,
}

var ErrUnknownLevel = errors.New("log: unknown level")

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	leveledBackend logging.LeveledBackend
	globalLevel    = Notice
	moduleLevels   = map[string]Level{}
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger. The name doubles as the module used by
// SetModuleLevel.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(name string) (Level, error) {
	lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Notice, errors.Wrapf(ErrUnknownLevel, "%q", name)
	}
	return lvl, nil
}

func (l Level) String() string {
	for name, lvl := range levelNames {
		if lvl == l {
			return name
		}
	}
	return "unknown"
}

func (l Level) backendLevel() logging.Level {
	switch l {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	default:
		return logging.NOTICE
	}
}

// Override the backend output sink. Levels set so far survive the swap.
func SetSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	leveledBackend = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	applyLevels()
	logging.SetBackend(leveledBackend)
}

// Set the verbosity for every module without an explicit override.
func SetLevel(level Level) {
	globalLevel = level
	applyLevels()
}

// Set the verbosity of a single named module, e.g. "postprocess".
func SetModuleLevel(module string, level Level) {
	moduleLevels[module] = level
	applyLevels()
}

// Enabled reports whether a message at level would be emitted by module.
func Enabled(module string, level Level) bool {
	return leveledBackend.IsEnabledFor(level.backendLevel(), module)
}

// Silence all module loggers except for errors. Used by tests to keep
// per-frame diagnostics out of the output.
func Quiet() {
	moduleLevels = map[string]Level{}
	SetLevel(Error)
}

func applyLevels() {
	leveledBackend.SetLevel(globalLevel.backendLevel(), "")
	for module, lvl := range moduleLevels {
		leveledBackend.SetLevel(lvl.backendLevel(), module)
	}
}

func init() {
	SetSink(os.Stdout)
}
