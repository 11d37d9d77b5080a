// Package cli is the booking command-line front end.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"appointment-booking-client/internal/api"
	"appointment-booking-client/internal/booking"
	"appointment-booking-client/internal/calendar"
	"appointment-booking-client/internal/catalog"
	"appointment-booking-client/internal/config"
	"appointment-booking-client/internal/lifecycle"
	"appointment-booking-client/internal/navigation"
	"appointment-booking-client/internal/session"
	"appointment-booking-client/internal/slots"
)

// App wires the booking engine for one command invocation.
type App struct {
	Cfg *config.Config
	Log *zap.Logger
	Out io.Writer

	Client       *api.Client
	Session      *session.Manager
	Catalog      *catalog.Resolver
	Calendar     *calendar.Engine
	Slots        *slots.Resolver
	Supply       *slots.Supply
	Workflow     *booking.Workflow
	Appointments *lifecycle.Lifecycle
	Board        *lifecycle.AdminBoard
	Dashboard    *lifecycle.Dashboard

	closers []func() error
}

// NewApp builds the engine and restores any persisted session.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) (*App, error) {
	store, closer, err := openStore(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}

	client := api.New(api.Options{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: rate.Limit(cfg.RateLimitRPS),
		Burst:     cfg.RateLimitBurst,
		Log:       log.Named("api"),
	})
	nav := navigation.Logging{Log: log.Named("nav")}
	mgr := session.NewManager(store, client, nav, log.Named("session"))
	client.UseAuthorizer(mgr)

	if _, err := mgr.Restore(ctx); err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, err
	}

	cat := catalog.NewResolver(client, log.Named("catalog"))
	cal := calendar.NewEngine(nil)
	res := slots.NewResolver(client, nil, log.Named("slots"))
	appts := lifecycle.New(client, nil, log.Named("lifecycle"))
	wf := booking.NewWorkflow(client, cat, res, cal, nav, log.Named("booking"))
	wf.OnSubmitted(appts.Invalidate)

	app := &App{
		Cfg:          cfg,
		Log:          log,
		Out:          out,
		Client:       client,
		Session:      mgr,
		Catalog:      cat,
		Calendar:     cal,
		Slots:        res,
		Supply:       slots.NewSupply(client, log.Named("supply")),
		Workflow:     wf,
		Appointments: appts,
		Board:        lifecycle.NewAdminBoard(client, log.Named("admin")),
		Dashboard:    lifecycle.NewDashboard(appts, cat, client, nil, log.Named("dashboard")),
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// Close releases the session store.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func() error, error) {
	switch cfg.Store {
	case "redis":
		rs, err := session.NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis session store: %w", err)
		}
		return rs, rs.Close, nil
	default:
		return session.NewFileStore(cfg.File), nil, nil
	}
}

// requireSession fails when nobody is signed in.
func (a *App) requireSession() error {
	if _, err := a.Session.Require(); err != nil {
		return fmt.Errorf("%w: run `booking login` first", err)
	}
	return nil
}

func (a *App) requireAdmin() error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if !a.Session.IsAdmin() {
		return fmt.Errorf("this command requires an administrator session")
	}
	return nil
}

// failure turns a backend error into the message the user sees. Errors that
// never reached the server pass through unchanged.
func failure(err error, fallback string) error {
	if errors.As(err, new(*api.Error)) {
		return errors.New(api.Message(err, fallback))
	}
	return err
}
