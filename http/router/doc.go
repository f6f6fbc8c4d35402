/*
Package router declares families of notification and subscription routes,
nested under the target resources they belong to.

A [Router] wraps [mux.Router] and leverages a standardized data model,
a [Route], when registering how requests should be routed.
A path and an HTTP method comprise a [Route].
An implementation of [http.Handler] is the function called when a request matches a Route.
Before a request gets to a handler, though,
any middlewares added to the Route are called in the order they appear.

Most applications never build those Routes by hand.
A [Mapper] declares a whole family of them per target resource in one call:

	r := router.New(env, logReq)
	m := router.NewMapper(r).
		HandleNotifications("", notificationsHandlers).
		HandleSubscriptions("", subscriptionsHandlers).
		NotifyTo(router.Options{WithSubscription: true}, an.SubscribableResource("users"))
	if err := m.Err(); err != nil {
		// a declaration was rejected; the chain after it did not run
	}

The example above serves, among others,

	GET  /users/{user_id}/notifications
	POST /users/{user_id}/notifications/open_all
	GET  /users/{user_id}/subscriptions

with every request carrying "target_type" route data naming the resource
the family was declared for.

[Options] shapes a declaration: renaming the sub-resource, filtering its
optional actions, carrying extra route data or middlewares, and binding
authentication through WithDevise.
*/
package router
