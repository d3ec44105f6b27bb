// Package logger provides the structured, levelled logger built on log/slog.
//
// Handlers never log through fmt; they ask for the request-scoped logger so
// every line carries the request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order submitted", "order_id", id)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/heartscript/config"
)

var L *slog.Logger

func init() {
	L = New(os.Stdout, config.IsProduction())
	slog.SetDefault(L)
}

// New builds a JSON logger for production and a human-readable text logger
// for everything else.
func New(w io.Writer, production bool) *slog.Logger {
	return slog.New(newBaseHandler(w, production))
}

func newBaseHandler(w io.Writer, production bool) slog.Handler {
	if production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// EnableMongo fans every record out to MongoDB in addition to stdout.
// The returned func flushes and disconnects the sink.
func EnableMongo(uri, database string) (func(), error) {
	mh, err := NewMongoHandler(uri, database, "logs")
	if err != nil {
		return nil, err
	}

	L = slog.New(NewMultiHandler(newBaseHandler(os.Stdout, config.IsProduction()), mh))
	slog.SetDefault(L)
	return mh.Close, nil
}

type ctxKey struct{}

// WithCtx returns the logger stored by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
