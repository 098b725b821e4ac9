// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output. Development gets a human readable
// console writer; every other environment logs JSON to stdout.
func Setup(level, environment string) {
	Configure(os.Stdout, level, environment)
}

// Configure is Setup with an explicit writer.
func Configure(w io.Writer, level, environment string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if strings.EqualFold(environment, "development") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: w != os.Stdout}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "agrisaarthi").Logger()
}
