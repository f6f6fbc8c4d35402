/*
Package main is a runnable tour of declaring notification and subscription
route families and serving them.

Run it, then try:

	curl localhost:3000/toolbox
	curl localhost:3000/users/1/notifications
	curl -X POST localhost:3000/users/1/notifications/open_all
	curl localhost:3000/users/1/subscriptions
	curl -H "Authorization: Bearer $TOKEN" localhost:3000/admins/1/notifications

The admin family is declared with devise integration, so the last call
requires the bearer token the demo logs at startup.
*/
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/auth"
	"github.com/sergii/activity-notification/engine"
	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/middleware"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/http/router"
	"github.com/sergii/activity-notification/http/session"
	"github.com/sergii/activity-notification/postgres"
)

func main() {
	// The demo serves canned data, so no database connection is made.
	e, err := engine.New(
		engine.WithEnv(an.Development.String()),
		engine.WithDB(postgres.NewDB(nil)),
		engine.WithSessionStore(session.NewStub(false)),
	)
	if err != nil {
		log.Fatal(err)
	}

	svc, err := auth.NewService("demo-signing-key", "demo-client", "demo-secret")
	if err != nil {
		log.Fatal(err)
	}

	token, err := svc.SignJWT(&auth.Claims{
		TargetType: "admins",
		TargetID:   1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	e.EmitLogger().Info("demo admin token: "+token, nil)

	// API clients authenticate with a bearer token instead of a session.
	e.OnEveryRequest(verifiedTarget(svc, e.EmitKeyring().CurrentTargetKey()))

	m := e.Mapper().
		HandleNotifications("", notifications{e.Responder}).
		HandleSubscriptions("", subscriptions{e.Responder}).
		NotifyTo(router.Options{WithSubscription: true}, an.SubscribableResource("users")).
		NotifyTo(router.Options{WithDevise: "admins"}, an.Resource("admins"))
	if err := m.Err(); err != nil {
		log.Fatal(err)
	}

	if err := e.Guide(); err != nil {
		log.Fatal(err)
	}
}

// verifiedTarget stashes the target a bearer token names in the request
// context, so devise-bound families can authenticate API clients.
// Requests without credentials pass through anonymous.
func verifiedTarget(v auth.Verifier, key keyring.Keyable) middleware.Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			kind, id, err := v.Verify(r)
			if err == nil {
				r = r.Clone(context.WithValue(r.Context(), key, demoTarget{kind: kind, id: id}))
			}

			handler.ServeHTTP(w, r)
		})
	}
}

type demoTarget struct {
	kind string
	id   uint
}

func (t demoTarget) GetID() uint          { return t.id }
func (t demoTarget) HasAccess() bool      { return true }
func (t demoTarget) HomePath() string     { return "/" }
func (t demoTarget) ResourceName() string { return t.kind }

// reply echoes which declared action served the request,
// alongside the path params and the route data the declaration stamped on it.
func reply(d *resp.Responder, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"action":    action,
			"params":    mux.Vars(r),
			"routeData": an.RouteDataFromContext(r.Context()),
		}
		if err := d.Json(w, r, resp.Data(payload)); err != nil {
			d.Err(w, r, err)
		}
	}
}

type notifications struct{ d *resp.Responder }

func (h notifications) Index(w http.ResponseWriter, r *http.Request)   { reply(h.d, "index")(w, r) }
func (h notifications) Show(w http.ResponseWriter, r *http.Request)    { reply(h.d, "show")(w, r) }
func (h notifications) Destroy(w http.ResponseWriter, r *http.Request) { reply(h.d, "destroy")(w, r) }
func (h notifications) OpenAll(w http.ResponseWriter, r *http.Request) { reply(h.d, "open_all")(w, r) }
func (h notifications) Move(w http.ResponseWriter, r *http.Request)    { reply(h.d, "move")(w, r) }
func (h notifications) Open(w http.ResponseWriter, r *http.Request)    { reply(h.d, "open")(w, r) }

type subscriptions struct{ d *resp.Responder }

func (h subscriptions) Index(w http.ResponseWriter, r *http.Request)  { reply(h.d, "index")(w, r) }
func (h subscriptions) Show(w http.ResponseWriter, r *http.Request)   { reply(h.d, "show")(w, r) }
func (h subscriptions) Create(w http.ResponseWriter, r *http.Request) { reply(h.d, "create")(w, r) }
func (h subscriptions) Destroy(w http.ResponseWriter, r *http.Request) {
	reply(h.d, "destroy")(w, r)
}
func (h subscriptions) Subscribe(w http.ResponseWriter, r *http.Request) {
	reply(h.d, "subscribe")(w, r)
}
func (h subscriptions) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	reply(h.d, "unsubscribe")(w, r)
}
func (h subscriptions) SubscribeToEmail(w http.ResponseWriter, r *http.Request) {
	reply(h.d, "subscribe_to_email")(w, r)
}
func (h subscriptions) UnsubscribeToEmail(w http.ResponseWriter, r *http.Request) {
	reply(h.d, "unsubscribe_to_email")(w, r)
}
func (h subscriptions) SubscribeToOptionalTarget(w http.ResponseWriter, r *http.Request) {
	reply(h.d, "subscribe_to_optional_target")(w, r)
}
func (h subscriptions) UnsubscribeToOptionalTarget(w http.ResponseWriter, r *http.Request) {
	reply(h.d, "unsubscribe_to_optional_target")(w, r)
}
