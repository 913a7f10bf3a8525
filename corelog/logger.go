package corelog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the concrete logger type every package in this module accepts:
// a logiface.Logger instantiated with stumpy's Event, the JSON writer
// logiface documents as its reference implementation.
type Logger = *logiface.Logger[*stumpy.Event]

// New returns a Logger writing newline-delimited JSON to w at level and
// above.
func New(w io.Writer, level logiface.Level) Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		logiface.WithLevel[*stumpy.Event](level),
	)
}

// Default returns a Logger writing to os.Stderr at informational level.
func Default() Logger {
	return New(os.Stderr, logiface.LevelInformational)
}

// Nop returns a Logger that discards everything: the zero value of
// *logiface.Logger is documented as safe and disabled (Level() returns
// LevelDisabled), the fallback used whenever a caller hasn't configured a
// logger explicitly.
func Nop() Logger { return (Logger)(nil) }
