package router

import (
	"fmt"
	"net/http"

	an "github.com/sergii/activity-notification"
)

// NotificationHandlers is the handler set a notification route family
// dispatches to, one method per declared action.
type NotificationHandlers interface {
	Index(http.ResponseWriter, *http.Request)
	Show(http.ResponseWriter, *http.Request)
	Destroy(http.ResponseWriter, *http.Request)
	OpenAll(http.ResponseWriter, *http.Request)
	Move(http.ResponseWriter, *http.Request)
	Open(http.ResponseWriter, *http.Request)
}

func notificationRoutes(hs NotificationHandlers) []familyRoute {
	return []familyRoute{
		{action: ActionIndex, method: http.MethodGet, always: true, named: true, handler: hs.Index},
		{action: ActionShow, method: http.MethodGet, suffix: "/{id}", member: true, always: true, named: true, handler: hs.Show},
		{action: ActionDestroy, method: http.MethodDelete, suffix: "/{id}", member: true, always: true, handler: hs.Destroy},
		{action: ActionOpenAll, method: http.MethodPost, suffix: "/open_all", named: true, handler: hs.OpenAll},
		{action: ActionMove, method: http.MethodGet, suffix: "/{id}/move", member: true, named: true, handler: hs.Move},
		{action: ActionOpen, method: http.MethodPost, suffix: "/{id}/open", member: true, named: true, handler: hs.Open},
	}
}

// NotifyTo declares a family of notification routes for each target,
// nested under the target's resource:
//
//	GET    /{targets}/{target_id}/notifications
//	GET    /{targets}/{target_id}/notifications/{id}
//	DELETE /{targets}/{target_id}/notifications/{id}
//	POST   /{targets}/{target_id}/notifications/open_all
//	GET    /{targets}/{target_id}/notifications/{id}/move
//	POST   /{targets}/{target_id}/notifications/{id}/open
//
// The first three always declare; Options.Except and Options.Only filter
// the rest. No route ever creates or updates a notification since the
// host application emits them, never its users.
//
// Every route carries the target's resource name as the "target_type"
// route data, available to its handler through an.RouteDataFromContext.
//
// When opts asks for subscriptions, each target supporting them per
// an.TargetSupportsSubscription gets a subscription route family too,
// declared as if by SubscribedBy and inheriting the family's devise
// binding. Targets without the capability are skipped without error.
func (m *Mapper) NotifyTo(opts Options, targets ...an.Target) *Mapper {
	if m.err != nil {
		return m
	}

	ro := resolveOptions(notificationResources, opts)
	hs, ok := m.notifications[ro.controller]
	if !ok {
		m.err = fmt.Errorf("%w: no handler set for controller %q", an.ErrNotFound, ro.controller)
		return m
	}

	for _, target := range targets {
		if m.err != nil {
			return m
		}

		m.declare(ro, target, notificationRoutes(hs))

		if ro.subscription != nil && an.TargetSupportsSubscription(target) {
			m.SubscribedBy(*ro.subscription, target)
		}
	}

	return m
}
