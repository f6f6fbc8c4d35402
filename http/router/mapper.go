package router

import (
	"fmt"
	"net/http"
	"slices"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/keyring"
	"github.com/sergii/activity-notification/http/middleware"
	"github.com/sergii/activity-notification/http/resp"
)

// Canonical controller names handler sets register under.
//
// A declaration derives which one it dispatches to from its Options:
// the _with_devise variants serve families declared with authentication.
const (
	NotificationsController           = "activity_notification/notifications"
	NotificationsWithDeviseController = "activity_notification/notifications_with_devise"
	SubscriptionsController           = "activity_notification/subscriptions"
	SubscriptionsWithDeviseController = "activity_notification/subscriptions_with_devise"
)

// A Mapper declares families of notification and subscription routes
// on a Router, one family per target resource.
//
// Declarations chain. The first failure latches and turns every later
// declaration into a no-op, so a route file reads straight through and
// checks Err once at the end:
//
//	m := router.NewMapper(r, router.WithAuthenticator(d, key)).
//		HandleNotifications("", notificationsHandlers).
//		HandleSubscriptions("", subscriptionsHandlers).
//		NotifyTo(router.Options{WithSubscription: true}, an.SubscribableResource("users")).
//		SubscribedBy(router.Options{}, an.Resource("admins"))
//	if err := m.Err(); err != nil {
//		// handle it
//	}
type Mapper struct {
	router        *Router
	responder     *resp.Responder
	targetKey     keyring.Keyable
	notifications map[string]NotificationHandlers
	subscriptions map[string]SubscriptionHandlers
	names         map[string]struct{}
	tools         an.Toolbox
	err           error
}

// A MapperOptFn configures a Mapper under construction.
type MapperOptFn func(*Mapper)

// WithAuthenticator equips the Mapper for declaring families with devise
// integration, which authenticate requests against the current target.
//
// Declaring such a family on a Mapper without an authenticator fails.
func WithAuthenticator(d *resp.Responder, targetKey keyring.Keyable) MapperOptFn {
	return func(m *Mapper) {
		m.responder = d
		m.targetKey = targetKey
	}
}

// NewMapper constructs a Mapper declaring routes on r.
func NewMapper(r *Router, opts ...MapperOptFn) *Mapper {
	m := &Mapper{
		router:        r,
		notifications: make(map[string]NotificationHandlers),
		subscriptions: make(map[string]SubscriptionHandlers),
		names:         make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if r == nil {
		m.err = fmt.Errorf("%w: router", an.ErrMissingData)
	}

	return m
}

// HandleNotifications registers the handler set notification declarations
// dispatch to.
//
// An empty controller registers hs under both canonical notification
// controller names. A non-empty controller registers hs under that name
// alone, for declarations naming it in Options.Controller.
func (m *Mapper) HandleNotifications(controller string, hs NotificationHandlers) *Mapper {
	if m.err != nil {
		return m
	}

	if hs == nil {
		m.err = fmt.Errorf("%w: notification handlers", an.ErrMissingData)
		return m
	}

	if controller == "" {
		m.notifications[NotificationsController] = hs
		m.notifications[NotificationsWithDeviseController] = hs
		return m
	}

	m.notifications[controller] = hs

	return m
}

// HandleSubscriptions registers the handler set subscription declarations
// dispatch to, following the same naming rule as HandleNotifications.
func (m *Mapper) HandleSubscriptions(controller string, hs SubscriptionHandlers) *Mapper {
	if m.err != nil {
		return m
	}

	if hs == nil {
		m.err = fmt.Errorf("%w: subscription handlers", an.ErrMissingData)
		return m
	}

	if controller == "" {
		m.subscriptions[SubscriptionsController] = hs
		m.subscriptions[SubscriptionsWithDeviseController] = hs
		return m
	}

	m.subscriptions[controller] = hs

	return m
}

// Err surfaces the first failure a declaration deferred.
//
// Declarations never panic mid-chain; they latch the failure and no-op
// from then on.
func (m *Mapper) Err() error { return m.err }

// Toolbox lists everything declared so far, one Tool per route family,
// for route listings outside production.
func (m *Mapper) Toolbox() an.Toolbox { return slices.Clone(m.tools) }

// A familyRoute is one row of a declaration entry point's route table.
//
// Always-on rows ignore the Options filter; the rest consult it.
// Named rows register under a Rails-style route name.
type familyRoute struct {
	action  Action
	method  string
	suffix  string
	member  bool
	always  bool
	named   bool
	handler http.HandlerFunc
}

// declare registers target's route family on the Router: one Route per
// table row that survives filtering, each carrying the family's route data,
// plus a Tool recording what was declared.
func (m *Mapper) declare(ro resolvedOptions, target an.Target, family []familyRoute) {
	resource := normalizeResource(target.ResourceName())
	if resource == "" {
		m.err = fmt.Errorf("%w: target resource name", an.ErrMissingData)
		return
	}

	singular := singularize(resource)
	collection := "/" + resource + "/{" + TargetParam(resource) + "}/" + ro.model

	data := make(an.RouteData, len(ro.defaults)+2)
	for k, v := range ro.defaults {
		data[k] = v
	}
	data["target_type"] = resource
	if ro.deviseType != "" {
		data["devise_type"] = ro.deviseType
	}

	mws := ro.middlewares
	if ro.deviseType != "" {
		if m.responder == nil || m.targetKey == nil {
			m.err = fmt.Errorf("%w: declaring %q with devise requires an authenticator", an.ErrMissingData, resource)
			return
		}

		auth := middleware.AuthenticateTarget(m.responder, m.targetKey, TargetParam(resource))
		mws = append(slices.Clone(ro.middlewares), auth)
	}

	var routes []Route
	tool := an.Tool{Title: resource + " " + ro.model}
	for _, fr := range family {
		if !fr.always && skipAction(fr.action, ro) {
			continue
		}

		var name string
		if fr.named {
			name = routeName(fr.action, singular, ro.model, fr.member)
			if _, ok := m.names[name]; ok {
				m.err = fmt.Errorf("%w: route name %q", an.ErrExists, name)
				return
			}

			m.names[name] = struct{}{}
		}

		routes = append(routes, Route{
			Path:        collection + fr.suffix,
			Method:      fr.method,
			Name:        name,
			Handler:     fr.handler,
			Middlewares: mws,
			Data:        data,
		})

		tool.Actions = append(tool.Actions, an.ToolAction{
			Method: fr.method,
			Name:   string(fr.action),
			URL:    collection + fr.suffix,
		})
	}

	m.router.HandleRoutes(routes)
	m.tools = append(m.tools, tool)
}
