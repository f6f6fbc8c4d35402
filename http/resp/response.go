package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/sergii/activity-notification/http/session"
	"github.com/sergii/activity-notification/logger"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(Responder, *Response) error

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w         http.ResponseWriter
	r         *http.Request
	closeBody bool
	code      int
	data      any
	target    any
	url       *url.URL
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// CurrentTarget stores the target in the *Response,
// assigning it to the "currentTarget" key when used with Responder.Json.
func CurrentTarget(t any) Fn {
	return func(d Responder, r *Response) error {
		r.target = t
		return nil
	}
}

// Data stores the provided value for writing to the client.
//
// Used with Responder.Json.
func Data(d any) Fn {
	return func(_ Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d Responder, r *Response) error {
		if e != nil {
			lt, _ := r.target.(logger.LogTarget)
			d.logger.Error(e.Error(), newLogContext(r.r, e, logData(d, r), lt))
		}

		if err := Code(http.StatusInternalServerError)(d, r); err != nil {
			return err
		}

		return nil
	}
}

// Flash sets a flash message in the session with the passed in class and msg.
func Flash(flash session.Flash) Fn {
	return func(d Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// GenericErr combines Err() and Flash() to log the passed in error
// and set a generic error flash in the session
// using either the string set by WithContactErrMsg or session.DefaultErrMsg.
func GenericErr(e error) Fn {
	return func(d Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := session.DefaultErrMsg
		if d.contactErrMsg != "" {
			msg = d.contactErrMsg
		}
		if err := Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r); err != nil {
			return err
		}

		return nil
	}
}

// Params adds the query parameters to the response's URL.
//
// Used with Responder.Redirect.
func Params(params map[string]string) Fn {
	return func(_ Responder, r *Response) error {
		if r.url == nil {
			return fmt.Errorf("%w: Url() has not been called", ErrMissingData)
		}

		q := r.url.Query()
		for key, val := range params {
			q.Add(key, val)
		}
		r.url.RawQuery = q.Encode()
		return nil
	}
}

// Success sets the status code to http.StatusOK
// and sets a session.FlashSuccess flash in the session with the passed in msg.
func Success(msg string) Fn {
	return func(d Responder, r *Response) error {
		if err := Code(http.StatusOK)(d, r); err != nil {
			return err
		}

		if err := Flash(session.Flash{Class: session.FlashSuccess, Msg: msg})(d, r); err != nil {
			return err
		}

		return nil
	}
}

// ToRoot calls Url() with the Responder's root URL.
func ToRoot() Fn {
	return func(d Responder, r *Response) error {
		if d.rootUrl == nil {
			return fmt.Errorf("%w: no root URL configured", ErrMissingData)
		}

		// Params mutates r.url, so hand over a copy rather than the shared root.
		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// Url parses the raw URL string and sets it in the *Response if successful.
//
// Used with Responder.Redirect.
func Url(u string) Fn {
	return func(_ Responder, r *Response) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("%w: u is not a valid URL: %v", ErrInvalid, err)
		}
		r.url = parsed
		return nil
	}
}

// Warn sets a flash warning in the session and logs the warning.
func Warn(msg string) Fn {
	return func(d Responder, r *Response) error {
		d.logger.Warn(msg, newLogContext(r.r, nil, logData(d, r), nil))

		if err := Flash(session.Flash{Class: session.FlashWarning, Msg: msg})(d, r); err != nil {
			return err
		}

		return nil
	}
}
