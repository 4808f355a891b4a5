package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	once sync.Once
	root zerolog.Logger
)

// New returns the process logger tagged with component.
// Output is a console writer on a terminal and JSON lines otherwise.
func New(component string) zerolog.Logger {
	once.Do(func() {
		var w io.Writer = os.Stderr
		if isatty.IsTerminal(os.Stderr.Fd()) {
			w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
		}
		root = NewWithWriter(w, ParseLevel(properties.LogLevel()))
	})
	return root.With().Str("component", component).Logger()
}

func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel falls back to info for empty or unknown levels.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
