package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/http/session"
)

// The Target defines attributes about an authenticated target in the context of middleware.
//
// Elsewhere in the module a target is any resource notifications nest under.
// Here it is narrower. A Target is the entity a session authenticates,
// since only those pass through access control.
type Target interface {
	GetID() uint
	HasAccess() bool
	HomePath() string
	ResourceName() string
}

// TargetStorer defines how to retrieve a Target by its resource name and ID
// in the context of middleware.
//
// Sessions register targets under both values since different target types
// can authenticate against the same application.
type TargetStorer func(targetType string, id uint) (Target, error)

// CurrentTarget pulls the Target out of the session.ActivitySessionable stored
// in the *http.Request.Context.
//
// A *resp.Responder is needed to handle cases a CurrentTarget cannot be retrieved
// or does not have access.
//
// CurrentTarget checks the MIME types of the *http.Request "Accept" header in order to handle
// those cases.
// CurrentTarget checks whether the "Accept" MIME type is "application/json"
// and writes a status code if so.
// If it isn't, CurrentTarget redirects to the Responder's root URL.
func CurrentTarget(d *resp.Responder, storer TargetStorer, sessionKey, targetKey keyring.Keyable) Adapter {
	if d == nil || storer == nil || sessionKey == nil || targetKey == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := r.Context().Value(sessionKey).(session.ActivitySessionable)
			if !ok {
				handleErr(w, r, http.StatusUnauthorized, d, nil)
				return
			}

			targetType, id, err := s.TargetID()
			if err != nil {
				// NOTE: there is no target in the session,
				// the request may be accessing an unauthenticated endpoint,
				// maybe not, something for access control middlewares to determine
				handler.ServeHTTP(w, r)
				return
			}

			target, err := storer(targetType, id)
			if err != nil {
				if err := s.Delete(w, r); err != nil {
					handleErr(w, r, http.StatusInternalServerError, d, err)
					return
				}

				handleErr(w, r, http.StatusUnauthorized, d, err)
				return
			}

			if !target.HasAccess() {
				s.ClearFlashes(w, r)
				if err := s.DeregisterTarget(w, r); err != nil {
					handleErr(w, r, http.StatusInternalServerError, d, err)
					return
				}

				handleErr(w, r, http.StatusUnauthorized, d, err)
				return
			}

			if err := s.ResetExpiry(w, r); err != nil {
				s.Delete(w, r) // NOTE: ignore delete error
				handleErr(w, r, http.StatusInternalServerError, d, err)
				return
			}

			w.Header().Add("Cache-control", "no-store")
			w.Header().Add("Pragma", "no-cache")

			ctx := context.WithValue(r.Context(), targetKey, target)
			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// RequireUnauthed returns a middleware.Adapter that checks whether a target is authenticated
// and requires they not be authenticated.
// When they are not authenticated, RequireUnauthed hands off to the next part of the middleware chain.
//
// Authenticated means a Target is set in the request context with the provided key.
//
// When the Target is authenticated, and the request's "Accept" header has "application/json" in it,
// RequireUnauthed writes 400 to the client.
// If the request does not have that value in its header,
// RequireUnauthed redirects to the Target's HomePath.
func RequireUnauthed(key keyring.Keyable) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct, ok := r.Context().Value(key).(Target); ok {
				vs := r.Header.Values("Accept")
				for _, v := range vs {
					if strings.Compare(v, "application/json") == 0 {
						w.WriteHeader(http.StatusBadRequest)
						return
					}
				}

				http.Redirect(w, r, ct.HomePath(), http.StatusTemporaryRedirect)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// RequireAuthed returns a middleware.Adapter that checks whether a Target is authenticated,
// and requires they be authenticated.
// When the Target is authenticated, then RequireAuthed hands off to the next part of the middleware chain.
//
// Authenticated means a Target is set in the request context with the provided key.
//
// When the Target is not authenticated, and the request's "Accept" header has "application/json" in it,
// RequireAuthed writes 401 to the client.
// If the request does not have that value in its header,
// RequireAuthed redirects to the provided login URL.
//
// The URL originally requested is appended to as a "next" query param
// when the request method is GET and the endpoint is not the logoff URL.
func RequireAuthed(key keyring.Keyable, loginUrl, logoffUrl string) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Value(key).(Target); !ok {
				vs := r.Header.Values("Accept")
				for _, v := range vs {
					if strings.Compare(v, "application/json") == 0 {
						w.WriteHeader(http.StatusUnauthorized)
						return
					}
				}

				u := loginUrl
				if r.Method == http.MethodGet && r.URL.Path != logoffUrl {
					u += "?next=" + url.QueryEscape(r.URL.String())
				}

				http.Redirect(w, r, u, http.StatusTemporaryRedirect)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// handleErr helps error paths by writing responses reflecting the
// "Accept" type of the *http.Request.
func handleErr(w http.ResponseWriter, r *http.Request, code int, d *resp.Responder, err error) {
	vs := r.Header.Values("Accept")
	for _, v := range vs {
		if strings.Compare(v, "application/json") == 0 {
			d.Json(w, r, resp.Err(err), resp.Code(code))
			return
		}
	}

	d.Redirect(w, r, resp.Err(err))
}
