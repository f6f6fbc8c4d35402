// Package handlers ships the default HTTP handler sets the router's
// declaration entry points dispatch to, backed by the postgres stores.
//
// Notifications satisfies router.NotificationHandlers and Subscriptions
// satisfies router.SubscriptionHandlers, so a host application mounts both
// resource families with two registrations:
//
//	m := router.NewMapper(rt).
//		HandleNotifications("", handlers.NewNotifications(d, notificationStore)).
//		HandleSubscriptions("", handlers.NewSubscriptions(d, subscriptionStore)).
//		NotifyTo(router.Options{WithSubscription: true}, an.SubscribableResource("users"))
//
// Handlers respond in the JSON envelope resp.Responder writes and normalize
// store failures onto HTTP statuses: not found 404, duplicate 409, invalid
// state 422, malformed input 400.
//
// A host wanting different semantics for some family implements the router
// interfaces itself and registers the set under a custom controller name.
package handlers
