// Package server owns the process lifecycle: it connects every backing
// service, serves HTTP (and gRPC health when configured) and shuts down
// gracefully on SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/heartscript/app/listeners"
	"github.com/shashiranjanraj/heartscript/config"
	"github.com/shashiranjanraj/heartscript/internal/kernel"
	"github.com/shashiranjanraj/heartscript/pkg/cache"
	"github.com/shashiranjanraj/heartscript/pkg/database"
	"github.com/shashiranjanraj/heartscript/pkg/event"
	"github.com/shashiranjanraj/heartscript/pkg/grpc"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/mail"
	"github.com/shashiranjanraj/heartscript/pkg/migration"
	"github.com/shashiranjanraj/heartscript/pkg/schedule"
	"github.com/shashiranjanraj/heartscript/pkg/session"
	"github.com/shashiranjanraj/heartscript/pkg/storage"
	"github.com/shashiranjanraj/heartscript/pkg/workerpool"
	"github.com/shashiranjanraj/heartscript/pkg/ws"
)

const shutdownTimeout = 10 * time.Second

// Options tune the process beyond what config provides.
type Options struct {
	// Workers and Queue size the pool that runs async event listeners.
	Workers int
	Queue   int
	// LoginAttempts per minute and IP on the login forms.
	LoginAttempts int
}

func DefaultOptions() Options {
	return Options{Workers: 4, Queue: 256, LoginAttempts: 10}
}

// Start applies pending migrations, then blocks until the process is signalled or the listener fails.
func Start(opts Options) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := config.RequireSecrets(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if uri := config.LogMongoURI(); uri != "" {
		closeSink, err := logger.EnableMongo(uri, config.LogMongoDatabase())
		if err != nil {
			logger.Warn("logger: mongo sink disabled", "error", err)
		} else {
			defer closeSink()
		}
	}

	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := migration.New(db).WithOutput(io.Discard).Run(); err != nil {
		return err
	}

	sched := schedule.New()
	store := sessionStore(ctx, sched)
	defer func() { _ = cache.Close() }()

	disk, err := storage.Connect(ctx)
	if err != nil {
		return err
	}

	pool := workerpool.New(opts.Workers, opts.Queue)
	bus := event.New().WithPool(pool)

	hub := ws.NewHub()
	go hub.Run(ctx)

	var mailer listeners.Sender
	if m := mail.New(mail.FromConfig()); m.Enabled() {
		mailer = m
	} else {
		logger.Info("mail: MAIL_HOST not set, order confirmations disabled")
	}

	k, err := kernel.New(kernel.Deps{
		DB:             db,
		Sessions:       store,
		SessionSecret:  config.SessionSecret(),
		AdminPassword:  config.AdminPassword(),
		SecureCookies:  config.IsProduction(),
		Disk:           disk,
		Bus:            bus,
		Hub:            hub,
		Mailer:         mailer,
		LoginAttempts:  opts.LoginAttempts,
		TrustedProxies: config.TrustedProxies(),
	})
	if err != nil {
		return err
	}

	sched.Start(ctx)

	if port := config.GRPCPort(); port != "" {
		srv, err := grpc.Start(port, func(ctx context.Context) error { return kernel.Ping(ctx, db) })
		if err != nil {
			return err
		}
		defer grpc.Stop(srv)
	}

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HeartScript listening", "addr", httpSrv.Addr, "env", config.AppEnv(), "checkout", k.Orders.Profile())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
	case <-ctx.Done():
	}
	stop()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http: shutdown", "error", err)
	}

	// Drain listeners before the database closes.
	pool.Shutdown()
	sched.Wait()
	return nil
}

// sessionStore prefers Redis. Without it sessions live in memory and a
// scheduled sweep drops expired ones.
func sessionStore(ctx context.Context, sched *schedule.Scheduler) session.Store {
	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, using in-memory sessions", "error", err)
		mem := session.NewMemoryStore()
		sched.Every(5).Minutes().Name("sessions:sweep").Run(func(ctx context.Context) {
			if n := mem.Sweep(); n > 0 {
				logger.WithCtx(ctx).Debug("sessions swept", "expired", n)
			}
		})
		return mem
	}
	return session.NewRedisStore(cache.RDB)
}

// OpenDB loads config and connects the configured database; the CLI's
// database commands use it.
func OpenDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}
