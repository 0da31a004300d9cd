package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger: prefixed with the app name, short
// timestamps, filtered at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stage times one pipeline step of a command. beginStage emits a debug
// marker so --verbose runs show where time goes; done logs the outcome with
// the elapsed duration, e.g. "Merged 4 events (12ms)".
type stage struct {
	logger *log.Logger
	name   string
	begun  time.Time
}

func beginStage(l *log.Logger, name string) *stage {
	l.Debug("stage start", "stage", name)
	return &stage{logger: l, name: name, begun: time.Now()}
}

func (s *stage) done(msg string) {
	s.logger.Infof("%s (%s)", msg, time.Since(s.begun).Round(time.Millisecond))
}

// loggerKey keys the logger in a context. A private struct type cannot
// collide with keys from other packages.
type loggerKey struct{}

// withLogger attaches l to the context for retrieval in RunE functions.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the attached logger, or log.Default() when the
// context carries none, so commands always log somewhere.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
