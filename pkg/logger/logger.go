// Package logger provides the structured, levelled logger used across Ayoo.
//
// It is a thin layer over log/slog. WithCtx returns the logger that the
// HTTP Logger middleware attached to the request, so every line written
// while serving a request carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order accepted", "order_id", order.ID)
//	// → time=... level=INFO msg="order accepted" request_id=a1b2c3d4 order_id=...
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/ayoo/config"
)

var L *slog.Logger

func init() {
	L = slog.New(consoleHandler())
	slog.SetDefault(L)
}

// consoleHandler writes JSON in production and text elsewhere. LOG_LEVEL
// (debug, info, warn, error) overrides the per-environment level.
func consoleHandler() slog.Handler {
	opts := &slog.HandlerOptions{Level: Level()}
	if config.IsProduction() {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}

// Level is the minimum console level for the current environment.
func Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(config.Get("LOG_LEVEL", ""))); err == nil {
		return lvl
	}
	switch {
	case config.IsProduction():
		return slog.LevelInfo
	case config.AppEnv() == "test":
		return slog.LevelWarn
	}
	return slog.LevelDebug
}

// Setup attaches optional sinks configured at boot. When LOG_MONGO_URI is set
// every record is also shipped to MongoDB and kept for LOG_MONGO_TTL. The
// returned func flushes and disconnects; it is never nil.
func Setup() (func(), error) {
	uri := config.LogMongoURI()
	if uri == "" {
		return func() {}, nil
	}

	ttl := config.LogMongoTTL()
	mh, err := NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection(), ttl)
	if err != nil {
		return func() {}, err
	}

	L = slog.New(Tee{consoleHandler(), mh})
	slog.SetDefault(L)
	return mh.Close, nil
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or the base
// logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx. Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
