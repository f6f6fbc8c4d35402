package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	// TODO(sb): configurable env files
	_ "github.com/joho/godotenv/autoload"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/handlers"
	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/middleware"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/http/router"
	"github.com/sergii/activity-notification/http/session"
	"github.com/sergii/activity-notification/logger"
	"github.com/sergii/activity-notification/postgres"
)

// An Engine manages and exposes all components of an activity notification app
// to one another.
type Engine struct {
	*resp.Responder
	*router.Router

	ctx      context.Context
	db       *postgres.DB
	env      an.Environment
	kr       keyring.Keyringable
	l        logger.Logger
	mapper   *router.Mapper
	sessions session.SessionStorer
	srv      *http.Server
	targets  middleware.TargetStorer
	url      *url.URL
}

// New constructs an Engine from the provided options.
// Default options are applied first followed by the options passed into New.
// Options supplied to New overwrite default configurations.
func New(opts ...EngineOption) (*Engine, error) {
	e := new(Engine)
	followups := make([]OptFollowup, 0)

	// NOTE(sb): calling an option configures the *Engine under construction.
	// Some options require data from other options.
	// These options, therefore, must delay configuring the *Engine
	// until either (1) user supplied EngineOptions or (2) default EngineOptions
	// configure the *Engine first.
	// They return an OptFollowup to be called after the initial set of options are run.
	for _, opt := range append(defaultOpts(), opts...) {
		fn, err := opt(e)
		if err != nil {
			return e, fmt.Errorf("%w: %s", an.ErrBadConfig, err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			return nil, fmt.Errorf("%w: %s", an.ErrBadConfig, err)
		}
	}

	return e, nil
}

func (e *Engine) EmitDB() *postgres.DB                    { return e.db }
func (e *Engine) EmitKeyring() keyring.Keyringable        { return e.kr }
func (e *Engine) EmitLogger() logger.Logger               { return e.l }
func (e *Engine) EmitSessionStore() session.SessionStorer { return e.sessions }

// Mapper hands back the router.Mapper route family declarations run through,
// constructing it on first call.
//
// The Mapper comes wired with the Engine's responder and current target key
// so families declared with Options.WithDevise authenticate requests,
// and with handler sets backed by the Engine's database registered under
// the canonical controller names; HandleNotifications and HandleSubscriptions
// replace those.
// In environments where an.Environment.ToolboxEnabled holds,
// the first call also serves the declared families at GET /toolbox.
func (e *Engine) Mapper() *router.Mapper {
	if e.mapper != nil {
		return e.mapper
	}

	var opts []router.MapperOptFn
	if e.kr != nil {
		opts = append(opts, router.WithAuthenticator(e.Responder, e.kr.CurrentTargetKey()))
	}

	m := router.NewMapper(e.Router, opts...)
	e.mapper = m

	if e.db != nil {
		m.HandleNotifications("", handlers.NewNotifications(e.Responder, postgres.NewNotificationStore(e.db))).
			HandleSubscriptions("", handlers.NewSubscriptions(e.Responder, postgres.NewSubscriptionStore(e.db)))
	}

	if e.env.ToolboxEnabled() {
		e.Handle(router.Route{
			Path:   "/toolbox",
			Method: http.MethodGet,
			Handler: func(w http.ResponseWriter, r *http.Request) {
				if err := e.Json(w, r, resp.Data(m.Toolbox().Filter())); err != nil {
					e.Err(w, r, err)
				}
			},
		})
	}

	return e.mapper
}

// Guide begins the web server.
//
// These, and (*Engine).Shutdown, stop Guide:
//
// - os.Interrupt
// - os.Kill
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (e *Engine) Guide() error {
	var cancel context.CancelFunc
	e.ctx, cancel = context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		os.Kill,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)

	go func() {
		s := <-ch
		e.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
		cancel()
	}()

	go func() {
		e.l.Info(fmt.Sprintf("running web server at %s", e.srv.Addr), nil)
		e.srv.Handler = e.Router
		if err := e.srv.ListenAndServe(); err != http.ErrServerClosed {
			err = fmt.Errorf("could not listen: %w", err)
			e.l.Error(err.Error(), nil)
		}
	}()

	<-e.ctx.Done()
	return e.Shutdown()
}

// Shutdown shutdowns the web server.
func (e *Engine) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e.l.Info("shutting down web server", nil)
	err := e.srv.Shutdown(shutdownCtx)
	if err == http.ErrServerClosed {
		e.l.Info("web server shutdown successfully", nil)
		return nil
	}

	if err != nil {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	e.l.Info("web server shutdown successfully", nil)
	return nil
}
