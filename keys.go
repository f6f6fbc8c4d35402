package activitynotification

import "context"

type Key string

const (
	// routeDataKey stashes the fixed data a declared route carries into every request it serves.
	routeDataKey Key = "RouteDataKey"

	// CurrentTargetKey stashes the target authenticated for a session.
	CurrentTargetKey Key = "CurrentTargetKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// ResponderKey stashes the app's *resp.Responder for handlers constructed without one.
	ResponderKey Key = "ResponderKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"

	// SessionIDKey stashes a unique UUID for each session.
	SessionIDKey Key = "SessionIDKey"
)

// Key returns the key as in a key-value pair.
func (k Key) Key() string { return string(k) }

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "activity notification context key: " + string(k)
}

// RouteData is the set of fixed defaults a declared route carries,
// such as the target_type the route family was declared for
// and the devise_type it authenticates with.
// The data is stashed in a context.Context when the route is matched
// and read back by handlers and middleware.
type RouteData map[string]string

// NewRouteDataContext adds data to ctx, returning the resulting context.
// If data has already been added to ctx, its key-value pairs are added to existing ones.
// If any keys collide, those in data overwrite previous values.
func NewRouteDataContext(ctx context.Context, data RouteData) context.Context {
	existing := RouteDataFromContext(ctx)
	for k, v := range data {
		existing[k] = v
	}

	return context.WithValue(ctx, routeDataKey, existing)
}

// RouteDataFromContext retrieves the RouteData in ctx.
// If not already set, it initializes a new RouteData.
func RouteDataFromContext(ctx context.Context) RouteData {
	data, ok := ctx.Value(routeDataKey).(RouteData)
	if !ok {
		data = make(RouteData)
	}

	return data
}
