package router

import (
	"fmt"
	"net/http"

	an "github.com/sergii/activity-notification"
)

// SubscriptionHandlers is the handler set a subscription route family
// dispatches to, one method per declared action.
type SubscriptionHandlers interface {
	Index(http.ResponseWriter, *http.Request)
	Show(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	Destroy(http.ResponseWriter, *http.Request)
	Subscribe(http.ResponseWriter, *http.Request)
	Unsubscribe(http.ResponseWriter, *http.Request)
	SubscribeToEmail(http.ResponseWriter, *http.Request)
	UnsubscribeToEmail(http.ResponseWriter, *http.Request)
	SubscribeToOptionalTarget(http.ResponseWriter, *http.Request)
	UnsubscribeToOptionalTarget(http.ResponseWriter, *http.Request)
}

func subscriptionRoutes(hs SubscriptionHandlers) []familyRoute {
	return []familyRoute{
		{action: ActionIndex, method: http.MethodGet, always: true, named: true, handler: hs.Index},
		{action: ActionShow, method: http.MethodGet, suffix: "/{id}", member: true, always: true, named: true, handler: hs.Show},
		{action: ActionCreate, method: http.MethodPost, always: true, handler: hs.Create},
		{action: ActionDestroy, method: http.MethodDelete, suffix: "/{id}", member: true, always: true, handler: hs.Destroy},
		{action: ActionSubscribe, method: http.MethodPost, suffix: "/{id}/subscribe", member: true, named: true, handler: hs.Subscribe},
		{action: ActionUnsubscribe, method: http.MethodPost, suffix: "/{id}/unsubscribe", member: true, named: true, handler: hs.Unsubscribe},
		{action: ActionSubscribeToEmail, method: http.MethodPost, suffix: "/{id}/subscribe_to_email", member: true, named: true, handler: hs.SubscribeToEmail},
		{action: ActionUnsubscribeToEmail, method: http.MethodPost, suffix: "/{id}/unsubscribe_to_email", member: true, named: true, handler: hs.UnsubscribeToEmail},
		{action: ActionSubscribeToOptionalTarget, method: http.MethodPost, suffix: "/{id}/subscribe_to_optional_target", member: true, named: true, handler: hs.SubscribeToOptionalTarget},
		{action: ActionUnsubscribeToOptionalTarget, method: http.MethodPost, suffix: "/{id}/unsubscribe_to_optional_target", member: true, named: true, handler: hs.UnsubscribeToOptionalTarget},
	}
}

// SubscribedBy declares a family of subscription routes for each target,
// nested under the target's resource:
//
//	GET    /{targets}/{target_id}/subscriptions
//	GET    /{targets}/{target_id}/subscriptions/{id}
//	POST   /{targets}/{target_id}/subscriptions
//	DELETE /{targets}/{target_id}/subscriptions/{id}
//	POST   /{targets}/{target_id}/subscriptions/{id}/subscribe
//	POST   /{targets}/{target_id}/subscriptions/{id}/unsubscribe
//	POST   /{targets}/{target_id}/subscriptions/{id}/subscribe_to_email
//	POST   /{targets}/{target_id}/subscriptions/{id}/unsubscribe_to_email
//	POST   /{targets}/{target_id}/subscriptions/{id}/subscribe_to_optional_target
//	POST   /{targets}/{target_id}/subscriptions/{id}/unsubscribe_to_optional_target
//
// The first four always declare, collection create included since targets
// manage their own subscriptions; Options.Except and Options.Only filter
// the rest. Unlike NotifyTo, nothing cascades from here.
func (m *Mapper) SubscribedBy(opts Options, targets ...an.Target) *Mapper {
	if m.err != nil {
		return m
	}

	ro := resolveOptions(subscriptionResources, opts)
	hs, ok := m.subscriptions[ro.controller]
	if !ok {
		m.err = fmt.Errorf("%w: no handler set for controller %q", an.ErrNotFound, ro.controller)
		return m
	}

	for _, target := range targets {
		if m.err != nil {
			return m
		}

		m.declare(ro, target, subscriptionRoutes(hs))
	}

	return m
}
