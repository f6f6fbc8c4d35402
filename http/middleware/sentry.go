package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"

	an "github.com/sergii/activity-notification"
)

// ReportPanic wraps the handler in sentryhttp.Handle
// in order to recover and report panics.
//
// In a development environment, panics surface locally instead,
// so NoopAdapter returns and this middleware does nothing.
func ReportPanic(env an.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(handler http.Handler) http.Handler {
		return sh.Handle(handler)
	}
}
