package log

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"

	"github.com/xeptore/beatpulse/constant"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

func newBaseLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.
		New(io.Discard).
		With().
		Dict(
			"app",
			zerolog.Dict().
				Str("name", constant.AppName).
				Str("version", constant.Version).
				Str("compilation_time", constant.CompileTime.Format(time.RFC3339)),
		).
		Timestamp().
		Logger().
		Level(level)
}

// New picks the colorized writer when out is an interactive terminal and
// falls back to one JSON object per line otherwise.
func New(out *os.File, level zerolog.Level) zerolog.Logger {
	if fd := out.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return NewPretty(out, level)
	}
	return NewPacked(out, level)
}

func NewPretty(w io.Writer, level zerolog.Level) zerolog.Logger {
	return newBaseLogger(level).Output(prettyWriter{out: w})
}

func NewPacked(w io.Writer, level zerolog.Level) zerolog.Logger {
	return newBaseLogger(level).Output(w)
}

func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(s)
	if nil != err {
		return zerolog.InfoLevel
	}
	return level
}

type prettyWriter struct {
	out io.Writer
}

func (p prettyWriter) Write(line []byte) (int, error) {
	if n, err := p.out.Write(pretty.Color(pretty.Pretty(line), nil)); nil != err {
		return n, err
	}
	return len(line), nil
}
