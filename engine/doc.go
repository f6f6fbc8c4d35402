/*
Package engine initializes and manages an activity notification app with sane defaults.

# Engine

The main entrypoint to package engine is the [Engine] type.
An [Engine] ought to be constructed with [New],
passing [EngineOption] values for the pieces the host application
wants to supply itself; everything else falls back to a default
built from environment variables.

Once constructed, [*Engine.Mapper] hands back the [router.Mapper]
the host application declares its notification and subscription
route families through.
Outside production the declared families are browsable at /toolbox.

[*Engine.Guide] begins the web server.
By default, [*Engine.Guide] listens on [DefaultHost]:[DefaultPort] (localhost:3000),
assuming either a reverse proxy proxies requests
or only a client application makes direct requests to the web server.

Upon calling [*Engine.Guide], all routes declared up to that point are active.
Stop the web server with [*Engine.Shutdown]
or send a signal [*Engine.Guide] listens for.

# Configuration

A developer configures an app through environment variables
and the [EngineOption] values passed to [New].
Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - APP_TITLE: a short title for the application; names the session cookie
  - BASE_URL: the base URL the application runs on; default: http://localhost:3000
  - CLIENT_URL: the origin CORS headers admit; unset disables CORS handling
  - CONTACT_US_EMAIL: the email address end users can reach the operators at
  - DATABASE_HOST: the host the database is running on; default: localhost
  - DATABASE_NAME: the name of the database
  - DATABASE_PASSWORD: the password for authenticating a connection to the database
  - DATABASE_PORT: the port the database is listening on; default: 5432
  - DATABASE_SSLMODE: the sslmode to connect with; default: prefer
  - DATABASE_URL: the fully-qualified connection string; replaces all other DATABASE_* env vars
  - DATABASE_USER: the user for authenticating a connection to the database
  - ENVIRONMENT: the environment the application is running in; cf. [an.Environment]
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - MAINTENANCE_MODE: "true" funnels every request to [MaintModeHandler]
  - PORT: the port the application should listen on; default: :3000
  - SENTRY_DSN: the DSN error reports ship to; unset keeps logging local
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]

The DATABASE_TEST_* variants of the DATABASE_* env vars
configure the throwaway database the TESTING environment connects to.
*/
package engine
