package ytsheets

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger - консольный логгер; неизвестный уровень считается info
func NewLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
