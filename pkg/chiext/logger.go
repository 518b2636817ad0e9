package chiext

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger logs every request through logger at a level picked from the
// response status.
func Logger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&LogFormatter{Logger: logger})
}

// LogFormatter implements middleware.LogFormatter on top of slog.
type LogFormatter struct {
	Logger *slog.Logger
}

// NewLogEntry creates a new LogEntry for the request.
func (l *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	attrs := []any{}

	reqID := middleware.GetReqID(r.Context())
	if reqID != "" {
		attrs = append(attrs, slog.String("request", reqID))
	}
	attrs = append(attrs, slog.String("from", r.RemoteAddr))

	return &logEntry{
		logger: l.Logger,
		ctx:    r.Context(),
		attrs:  attrs,
		msg:    fmt.Sprintf("%s %s", r.Method, r.URL.Path),
	}
}

type logEntry struct {
	logger *slog.Logger
	ctx    context.Context
	attrs  []any
	msg    string
}

func Level(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

func (l *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	attrs := append(l.attrs,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.String("elapsed", elapsed.String()),
	)

	l.logger.Log(l.ctx, Level(status), l.msg, attrs...)
}

func (l *logEntry) Panic(v interface{}, stack []byte) {
	l.logger.Error("Request panicked", append(l.attrs, slog.Any("panic", v), slog.String("stack", string(stack)))...)
}
