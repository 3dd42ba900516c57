package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName tags every log line and the health endpoint.
const ServiceName = "furryville-index"

// NewLogger builds the process logger for appEnv: a console writer for
// local development, JSON on stdout everywhere else.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(os.Stdout, appEnv)
}

func newLogger(out io.Writer, appEnv string) zerolog.Logger {
	switch strings.ToLower(appEnv) {
	case "dev", "development", "local":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Str("service", ServiceName).Logger()
}
