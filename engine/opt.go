package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/middleware"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/http/router"
	"github.com/sergii/activity-notification/http/session"
	"github.com/sergii/activity-notification/logger"
	"github.com/sergii/activity-notification/postgres"
)

// An EngineOption configures an *Engine either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some EngineOptions require data in others and thus an OptFollowup can be returned
// in order to be called at a later time when that data is available.
//
// WithKeyring is an example of the first.
// An unexported field on the passed in *Engine is updated with the enclosed value.
//
// WithRouter is an example of the second.
// An unexported field on the passed in *Engine
// is updated only when the closure it returns is called.
type EngineOption func(e *Engine) (OptFollowup, error)
type OptFollowup func() error

// WithContext exposes the provided context.Context to the app.
func WithContext(ctx context.Context) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.ctx = ctx
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using context %T", ctx), nil)
		}

		return nil, nil
	}
}

// WithDB exposes the provided *postgres.DB to the app.
//
// WithDB assumes a connection has already been established
// and migrations have already run.
func WithDB(db *postgres.DB) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.db = db
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using db %T", db), nil)
		}

		return nil, nil
	}
}

// WithEnv casts the provided string into a valid an.Environment,
// or, reads from the ENVIRONMENT environment variable a valid an.Environment.
//
// If both fail, the default an.Environment is Development.
func WithEnv(envVar string) EngineOption {
	env := an.Environment(strings.ToUpper(envVar))
	if err := env.Valid(); err == nil {
		return func(e *Engine) (OptFollowup, error) {
			e.env = env
			if setupLog != nil {
				setupLog.Debug(fmt.Sprintf("using env %s", env), nil)
			}

			return nil, nil
		}
	}

	return func(e *Engine) (OptFollowup, error) {
		e.env = an.EnvVarOrEnv(environmentEnvVar, an.Development)
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using env %s", e.env), nil)
		}

		return nil, nil
	}
}

// WithKeyring exposes the provided keyring.Keyringable to the app.
func WithKeyring(kr keyring.Keyringable) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.kr = kr
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using keyring %T", kr), nil)
		}

		return nil, nil
	}
}

// WithLogger exposes the provided logger.Logger to the app.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.l = l
		if setupLog == nil {
			setupLog = l
		}

		setupLog.Debug(fmt.Sprintf("using logger %T", l), nil)

		return nil, nil
	}
}

// WithResponder constructs a followup option that, when called,
// exposes the *resp.Responder to the app.
func WithResponder(d *resp.Responder) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		return func() error {
			e.Responder = d
			if setupLog != nil {
				setupLog.Debug("using responder", nil)
			}

			return nil
		}, nil
	}
}

// WithRouter constructs a followup option that, when called,
// exposes the *router.Router to the app.
func WithRouter(r *router.Router) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		return func() error {
			if e.srv == nil {
				e.srv = defaultServer(e.ctx)
			}

			e.Router = r
			e.srv.Handler = r

			if setupLog != nil {
				setupLog.Debug(fmt.Sprintf("using router %T", r), nil)
				setupLog.Debug(fmt.Sprintf("using server %T", e.srv), nil)
			}

			return nil
		}, nil
	}
}

// WithTargetStorer exposes how the app loads the target a session authenticated,
// wiring middleware.CurrentTarget into the default router's stack.
//
// Without it no middleware resolves the session's target,
// so families declared with Options.WithDevise reject every request.
func WithTargetStorer(storer middleware.TargetStorer) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.targets = storer
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using target storer %T", storer), nil)
		}

		return nil, nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the app.
func WithSessionStore(store session.SessionStorer) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.sessions = store
		if setupLog != nil {
			setupLog.Debug(fmt.Sprintf("using session store %T", store), nil)
		}

		return nil, nil
	}
}

// WithServer exposes the *http.Server to the app.
func WithServer(srv *http.Server) EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		old := e.srv
		e.srv = srv

		if old != nil {
			e.srv.Handler = old.Handler
		}

		return nil, nil
	}
}
