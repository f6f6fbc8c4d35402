package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/resp"
)

// AuthenticateTarget enforces the authentication rule a declared route family
// carries in its route data.
//
// Declared routes name the "target_type" they were declared for and the
// "devise_type" they authenticate with. AuthenticateTarget compares the two:
//
//   - When they match, the authenticated Target must be the very target
//     the route addresses, otherwise 403 returns.
//   - When they differ, any Target authenticated as the devise type
//     may proceed, otherwise 401 returns.
//
// Requests whose route data is missing either value receive 400
// since the route family was declared without authentication metadata.
//
// targetParam names the URL path parameter holding the addressed target's ID,
// e.g. "user_id" for routes declared under "users".
//
// AuthenticateTarget requires CurrentTarget to have run earlier in the chain;
// an unauthenticated request receives 401.
func AuthenticateTarget(d *resp.Responder, targetKey keyring.Keyable, targetParam string) Adapter {
	if d == nil || targetKey == nil || targetParam == "" {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data := an.RouteDataFromContext(r.Context())
			targetType, deviseType := data["target_type"], data["devise_type"]
			if targetType == "" || deviseType == "" {
				handleErr(w, r, http.StatusBadRequest, d, fmt.Errorf("%w: devise route data", an.ErrMissingData))
				return
			}

			current, ok := r.Context().Value(targetKey).(Target)
			if !ok {
				handleErr(w, r, http.StatusUnauthorized, d, nil)
				return
			}

			if deviseType != targetType {
				if current.ResourceName() != deviseType {
					handleErr(w, r, http.StatusUnauthorized, d, nil)
					return
				}

				handler.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseUint(mux.Vars(r)[targetParam], 10, 64)
			if err != nil {
				handleErr(w, r, http.StatusBadRequest, d, fmt.Errorf("%w: %s: %v", an.ErrNotValid, targetParam, err))
				return
			}

			if current.ResourceName() != targetType || current.GetID() != uint(id) {
				handleErr(w, r, http.StatusForbidden, d, nil)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}
