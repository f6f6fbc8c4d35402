package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/middleware"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/http/router"
	"github.com/sergii/activity-notification/http/session"
	"github.com/sergii/activity-notification/logger"
	"github.com/sergii/activity-notification/postgres"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	AppTitleEnvVar   = "APP_TITLE"
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultAppTitle  = "activity-notification"
	defaultContactUs = "hello@example.com"

	// CORS defaults
	clientURLEnvVar = "CLIENT_URL"

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// Maintenance mode defaults
	maintModeEnvVar = "MAINTENANCE_MODE"

	// Database defaults
	dbHostEnvVar         = "DATABASE_HOST"
	defaultDBHost        = "localhost"
	dbNameEnvVar         = "DATABASE_NAME"
	dbPassEnvVar         = "DATABASE_PASSWORD"
	dbPortEnvVar         = "DATABASE_PORT"
	defaultDBPort        = "5432"
	dbSSLModeEnvVar      = "DATABASE_SSLMODE"
	defaultDBSSLMode     = "prefer"
	dbURLEnvVar          = "DATABASE_URL"
	dbUserEnvVar         = "DATABASE_USER"
	dbMaxIdleCxnsEnvVar  = "DATABASE_MAX_IDLE_CXNS"
	defaultDBMaxIdleCxns = 1

	// Web server defaults
	DefaultHost               = "localhost"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"

	// Test defaults
	dbTestHostEnvVar     = "DATABASE_TEST_HOST"
	defaultDBTestHost    = "localhost"
	dbTestNameEnvVar     = "DATABASE_TEST_NAME"
	dbTestPassEnvVar     = "DATABASE_TEST_PASSWORD"
	dbTestPortEnvVar     = "DATABASE_TEST_PORT"
	defaultDBTestPort    = "5432"
	dbTestURLEnvVar      = "DATABASE_TEST_URL"
	dbTestUserEnvVar     = "DATABASE_TEST_USER"
	dbTestSSLModeEnvVar  = "DATABASE_TEST_SSLMODE"
	defaultDBTestSSLMode = "prefer"
)

var defaultBaseURL = "http://" + DefaultHost + DefaultPort

// setupLog reports configuration progress while an Engine constructs,
// before the app's own logger necessarily exists.
var setupLog logger.Logger

// defaultOpts are the EngineOptions New applies
// before any the caller passed in.
func defaultOpts() []EngineOption {
	return []EngineOption{
		WithEnv(os.Getenv(environmentEnvVar)),
		defaultLogger(),
		defaultKeyring(),
		defaultURL(),
		defaultDB(),
		defaultSessionStore(),
		defaultResponder(),
		defaultRouter(),
	}
}

// NewPostgresConfig constructs a *postgres.CxnConfig appropriate to the given environment.
// Confer the DATABASE env vars for usage.
func NewPostgresConfig(env an.Environment) *postgres.CxnConfig {
	var cfg *postgres.CxnConfig
	url := os.Getenv(dbURLEnvVar)
	switch {
	case env.IsTesting():
		cfg = &postgres.CxnConfig{
			Host:     an.EnvVarOrString(dbTestHostEnvVar, defaultDBTestHost),
			IsTestDB: true,
			Name:     os.Getenv(dbTestNameEnvVar),
			Password: os.Getenv(dbTestPassEnvVar),
			Port:     an.EnvVarOrString(dbTestPortEnvVar, defaultDBTestPort),
			SSLMode:  an.EnvVarOrString(dbTestSSLModeEnvVar, defaultDBTestSSLMode),
			URL:      os.Getenv(dbTestURLEnvVar),
			User:     os.Getenv(dbTestUserEnvVar),
		}

	case url == "":
		cfg = &postgres.CxnConfig{
			Host:     an.EnvVarOrString(dbHostEnvVar, defaultDBHost),
			IsTestDB: false,
			Name:     os.Getenv(dbNameEnvVar),
			Password: os.Getenv(dbPassEnvVar),
			Port:     an.EnvVarOrString(dbPortEnvVar, defaultDBPort),
			SSLMode:  an.EnvVarOrString(dbSSLModeEnvVar, defaultDBSSLMode),
			User:     os.Getenv(dbUserEnvVar),
		}

	default:
		cfg = &postgres.CxnConfig{IsTestDB: false, URL: url}
	}

	cfg.Env = env
	cfg.MaxIdleCxns = an.EnvVarOrInt(dbMaxIdleCxnsEnvVar, defaultDBMaxIdleCxns)

	return cfg
}

// defaultDB connects to a Postgres database
// using default configuration environment variables
// and runs the module's schema migrations,
// unless WithDB already supplied a connection.
func defaultDB() EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		return func() error {
			if e.db != nil {
				return nil
			}

			db, err := postgres.Connect(NewPostgresConfig(e.env))
			if err != nil {
				return err
			}

			if err := postgres.MigrateUp(db.DB(), "public", postgres.Migrations()); err != nil {
				return err
			}

			e.db = db
			setupLog.Debug("using default db", nil)

			return nil
		}, nil
	}
}

// defaultKeyring registers the module's context keys.
func defaultKeyring() EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.kr = keyring.NewKeyring(
			an.SessionKey,
			an.CurrentTargetKey,
			an.IpAddrKey,
			an.RequestIDKey,
			an.ResponderKey,
			an.SessionIDKey,
		)

		return nil, nil
	}
}

// defaultLogger constructs the logger.Logger configured for use in the application.
//
// When the SENTRY_DSN env var is set, logger.NewLogger wraps the logger
// so errors also report to Sentry.
func defaultLogger() EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		ll := logger.NewLogLevel(os.Getenv(logLevelEnvVar))
		if ll == logger.LogLevelUnk {
			ll = logger.LogLevelInfo
		}

		e.l = logger.NewLogger(logger.WithEnv(e.env.String()), logger.WithLevel(ll))
		if setupLog == nil {
			setupLog = e.l
		}

		return nil, nil
	}
}

// defaultURL reads the base URL the app runs on from the BASE_URL env var.
func defaultURL() EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		e.url = an.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)

		return nil, nil
	}
}

// defaultResponder configures the *resp.Responder used by http.Handlers.
func defaultResponder() EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		return func() error {
			contact := an.EnvVarOrString(ContactUsEnvVar, defaultContactUs)
			e.Responder = resp.NewResponder(
				resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, contact)),
				resp.WithCtxKeys(an.RequestIDKey, an.IpAddrKey),
				resp.WithLogger(e.l),
				resp.WithRootUrl(e.url.String()),
				resp.WithSessionKey(e.kr.SessionKey()),
				resp.WithTargetKey(e.kr.CurrentTargetKey()),
			)

			return nil
		}, nil
	}
}

// defaultRouter constructs the *router.Router used by the web server,
// stacking the middlewares every request passes through.
func defaultRouter() EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		return func() error {
			if e.srv == nil {
				e.srv = defaultServer(e.ctx)
			}

			r := router.New(e.env, middleware.LogRequest(e.l))
			mws := []middleware.Adapter{
				middleware.RateLimit(middleware.NewVisitors()),
				middleware.RequestID(an.RequestIDKey),
				middleware.InjectIPAddress(),
				middleware.LogRequest(e.l),
				middleware.ForceHTTPS(e.env),
				middleware.CORS(os.Getenv(clientURLEnvVar)),
				middleware.InjectSession(e.sessions, e.kr.SessionKey()),
				middleware.InjectResponder(e.Responder, an.ResponderKey),
			}
			if e.targets != nil {
				mws = append(mws, middleware.CurrentTarget(e.Responder, e.targets, e.kr.SessionKey(), e.kr.CurrentTargetKey()))
			}
			r.OnEveryRequest(mws...)

			r.HandleNotFound(func(w http.ResponseWriter, rx *http.Request) {
				if strings.Contains(rx.Header.Get("Accept"), "text/html") && rx.URL.Path != e.url.Path {
					e.Redirect(w, rx, resp.ToRoot())
					return
				}

				w.WriteHeader(http.StatusNotFound)
			})

			if an.EnvVarOrBool(maintModeEnvVar, false) {
				r.CatchAll(MaintModeHandler(e.l))
			}

			e.Router = r
			e.srv.Handler = r

			return nil
		}, nil
	}
}

// defaultSessionStore constructs a cookie-backed session.SessionStorer,
// unless WithSessionStore already supplied one.
//
// defaultSessionStore relies on three env vars:
//   - APP_TITLE
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//
// Both KEY env vars must be valid hex encoded values; cf. [encoding/hex].
func defaultSessionStore() EngineOption {
	return func(e *Engine) (OptFollowup, error) {
		return func() error {
			if e.sessions != nil {
				return nil
			}

			appName := cases.Lower(language.English).String(an.EnvVarOrString(AppTitleEnvVar, defaultAppTitle))
			appName = regexp.MustCompile(`[,':]`).ReplaceAllString(appName, "")
			appName = regexp.MustCompile(`\s`).ReplaceAllString(appName, "-")

			cfg := session.Config{
				AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
				EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
				Env:         e.env,
				SessionName: "activity-" + appName,
			}

			store, err := session.NewStoreService(
				cfg,
				session.WithCookie(),
				session.WithMaxAge(3600*24*7),
			)
			if err != nil {
				return err
			}

			e.sessions = store

			return nil
		}, nil
	}
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := an.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  an.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  an.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: an.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}

// MaintModeHandler responds 503 to every request while the app undergoes
// maintenance, hinting clients retry in ten minutes.
func MaintModeHandler(l logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if l != nil {
			l.Info("responding in maintenance mode: "+r.URL.Path, nil)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "600")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"data":{"message":"down for maintenance"}}`))
	}
}
