package resp

import (
	"net/url"

	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/logger"
)

// A ResponderOptFn mutates the provided *Responder in some way.
// A ResponderOptFn is used when constructing a new Responder.
type ResponderOptFn func(*Responder)

// WithContactErrMsg sets the error message to use for error Flashes.
//
// We recommend using session.ContactUsErr as a template.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) {
		d.contactErrMsg = msg
	}
}

// WithCtxKeys sets the keys whose request context values Err and Warn
// fold into their log context.
func WithCtxKeys(keys ...keyring.Keyable) ResponderOptFn {
	return func(d *Responder) {
		d.ctxKeys = keyring.ByKeyable(keys).UniqueSort()
	}
}

// WithLogger sets the provided implementation of Logger in order to log all statements through it.
//
// If no Logger is provided through this option, a default logger will be configured.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

// WithRootUrl sets the provided URL after parsing it into a *url.URL to use for redirecting.
//
// NOTE: If u fails parsing by url.ParseRequestURI, the root URL becomes https://example.com
func WithRootUrl(u string) ResponderOptFn {
	good, err := url.ParseRequestURI(u)
	if err != nil {
		good, _ = url.ParseRequestURI("https://example.com")
	}

	return func(d *Responder) {
		d.rootUrl = good
	}
}

// WithSessionKey sets the key for pulling a session.ActivitySessionable
// out of a request context.
func WithSessionKey(key keyring.Keyable) ResponderOptFn {
	return func(d *Responder) {
		d.sessionKey = key
	}
}

// WithTargetKey sets the key for pulling the authenticated target
// out of a request context.
func WithTargetKey(key keyring.Keyable) ResponderOptFn {
	return func(d *Responder) {
		d.targetKey = key
	}
}
