package router

import (
	"net/http"

	"github.com/gorilla/mux"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/middleware"
)

// A Route maps a path and HTTP method to an [http.HandlerFunc].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
//
// A Route declared by a [Mapper] also carries a name and fixed route data;
// the data reaches the Route's handler through [an.RouteDataFromContext].
type Route struct {
	Path        string
	Method      string
	Name        string
	Handler     http.HandlerFunc
	Middlewares []middleware.Adapter
	Data        an.RouteData
}

// Router routes requests for notification and subscription resources
// to the handlers declared for them.
type Router struct {
	Env           an.Environment
	everyReqStack []middleware.Adapter
	logReq        middleware.Adapter
	r             *mux.Router
}

// New constructs a [*Router] for the given environment.
func New(env an.Environment, logReq middleware.Adapter) *Router {
	if logReq == nil {
		logReq = middleware.NoopAdapter
	}

	return &Router{Env: env, logReq: logReq, r: mux.NewRouter()}
}

// AuthedRoutes registers the set of Routes as those requiring authentication.
// AuthedRoutes applies the given middlewares before performing that check,
// using middleware.RequireAuthed.
//
// middleware.RequireAuthed requires loginUrl and logoffUrl to appropriately
// redirect applicable requests.
func (r *Router) AuthedRoutes(
	key keyring.Keyable,
	loginUrl,
	logoffUrl string,
	routes []Route,
	middlewares ...middleware.Adapter,
) {
	mws := append(middlewares, middleware.RequireAuthed(key, loginUrl, logoffUrl))
	r.HandleRoutes(routes, mws...)
}

// CatchAll sets up a handler for all routes to funnel to for e.g. maintenance mode.
func (r *Router) CatchAll(handler http.HandlerFunc) {
	r.r.PathPrefix("/").Handler(
		middleware.Chain(
			middleware.ReportPanic(r.Env)(handler),
			r.everyReqStack...,
		),
	)
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.HandlerFunc] as the default function
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.HandlerFunc) {
	r.r.NotFoundHandler = middleware.Chain(
		middleware.ReportPanic(r.Env)(handler),
		r.logReq,
	)
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
//
// A Route carrying Data has it stashed in the request context
// before any middleware runs; a Route carrying a Name registers under it.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := append(r.everyReqStack, middlewares...)
		mws = append(mws, route.Middlewares...)
		handler := middleware.Chain(middleware.ReportPanic(r.Env)(route.Handler), mws...)
		if len(route.Data) > 0 {
			handler = stashRouteData(route.Data, handler)
		}

		registered := r.r.Handle(route.Path, handler).Methods(route.Method)
		if route.Name != "" {
			registered.Name(route.Name)
		}
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// Subrouter constructs a [Router] that handles requests to endpoints matching the prefix.
//
// e.g., r.Subrouter("/api/v1") handles requests to endpoints like /api/v1/users
func (r *Router) Subrouter(prefix string) *Router {
	return &Router{
		Env:           r.Env,
		r:             r.r.PathPrefix(prefix).Subrouter(),
		logReq:        r.logReq,
		everyReqStack: r.everyReqStack,
	}
}

// UnauthedRoutes registers the set of Routes as those requiring unauthenticated targets.
// It applies the given middlewares before performing that check.
func (r *Router) UnauthedRoutes(key keyring.Keyable, routes []Route, middlewares ...middleware.Adapter) {
	r.HandleRoutes(routes, append(middlewares, middleware.RequireUnauthed(key))...)
}

// stashRouteData adds the fixed data a declared route carries
// to the context of every request the route serves.
func stashRouteData(data an.RouteData, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r.Clone(an.NewRouteDataContext(r.Context(), data)))
	})
}
