package handlers

import (
	"fmt"
	"net/http"
	"time"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/req"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/postgres"
)

// A SubscriptionStorer is the persistence a Subscriptions handler set
// reads and mutates. *postgres.SubscriptionStore implements it.
type SubscriptionStorer interface {
	List(q postgres.SubscriptionQuery) ([]an.Subscription, error)
	Find(targetType string, targetID, id uint) (an.Subscription, error)
	Create(s *an.Subscription) error
	Destroy(s an.Subscription) error
	Subscribe(s *an.Subscription, at time.Time) error
	Unsubscribe(s *an.Subscription, at time.Time) error
	SubscribeToEmail(s *an.Subscription, at time.Time) error
	UnsubscribeToEmail(s *an.Subscription, at time.Time) error
	SubscribeToOptionalTarget(s *an.Subscription, name string, at time.Time) error
	UnsubscribeToOptionalTarget(s *an.Subscription, name string, at time.Time) error
}

// Subscriptions serves a target's subscription routes,
// satisfying router.SubscriptionHandlers.
type Subscriptions struct {
	d      *resp.Responder
	parser *req.Parser
	store  SubscriptionStorer
}

// NewSubscriptions constructs the handler set subscription declarations
// dispatch to.
func NewSubscriptions(d *resp.Responder, store SubscriptionStorer) *Subscriptions {
	return &Subscriptions{d: d, parser: req.NewParser(), store: store}
}

type subscriptionIndexParams struct {
	FilteredByKey string `json:"filteredByKey" schema:"filtered_by_key"`
	Limit         int    `json:"limit" schema:"limit" validate:"omitempty,gte=1"`
	Reverse       bool   `json:"reverse" schema:"reverse"`
}

type subscriptionIndex struct {
	Count         int               `json:"count"`
	Subscriptions []an.Subscription `json:"subscriptions"`
}

// Index lists the target's subscriptions, newest first.
//
// Query params filter the listing: filtered_by_key, limit, reverse.
func (hs *Subscriptions) Index(w http.ResponseWriter, r *http.Request) {
	targetType, targetID, err := target(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	var params subscriptionIndexParams
	if err := hs.parser.ParseQueryParams(r.URL.Query(), &params); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	subs, err := hs.store.List(postgres.SubscriptionQuery{
		TargetType:    targetType,
		TargetID:      targetID,
		FilteredByKey: params.FilteredByKey,
		Limit:         params.Limit,
		Reverse:       params.Reverse,
	})
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Data(subscriptionIndex{Count: len(subs), Subscriptions: subs}))
}

// Show responds with the addressed subscription.
func (hs *Subscriptions) Show(w http.ResponseWriter, r *http.Request) {
	s, err := hs.find(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Data(s))
}

type createSubscriptionParams struct {
	Key                string          `json:"key" validate:"required"`
	Subscribing        *bool           `json:"subscribing"`
	SubscribingToEmail *bool           `json:"subscribingToEmail"`
	OptionalTargets    map[string]bool `json:"optionalTargets"`
}

// Create inserts a subscription for the target from the JSON request body.
//
// The body requires a key. The subscribing toggle defaults to true when
// absent and the email toggle follows it unless set explicitly. Optional
// channels are named toggles under optionalTargets.
//
// A subscription already holding the key responds 409.
func (hs *Subscriptions) Create(w http.ResponseWriter, r *http.Request) {
	targetType, targetID, err := target(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	var params createSubscriptionParams
	if err := hs.parser.ParseBody(r.Body, &params); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	s := an.Subscription{
		TargetType:  targetType,
		TargetID:    targetID,
		Key:         params.Key,
		Subscribing: true,
	}
	if params.Subscribing != nil {
		s.Subscribing = *params.Subscribing
	}

	s.SubscribingToEmail = s.Subscribing
	if params.SubscribingToEmail != nil {
		s.SubscribingToEmail = *params.SubscribingToEmail
	}

	now := time.Now()
	for name, subscribing := range params.OptionalTargets {
		s.SetOptionalTarget(name, subscribing, now)
	}

	if err := hs.store.Create(&s); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Code(http.StatusCreated), resp.Data(s))
}

// Destroy archives the addressed subscription and responds 204,
// freeing its key for a later Create.
func (hs *Subscriptions) Destroy(w http.ResponseWriter, r *http.Request) {
	s, err := hs.find(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	if err := hs.store.Destroy(s); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscribe turns the subscription's default channel on,
// bringing the email channel and any optional channels along with it.
func (hs *Subscriptions) Subscribe(w http.ResponseWriter, r *http.Request) {
	hs.toggle(w, r, hs.store.Subscribe)
}

// Unsubscribe turns the subscription's default channel off,
// taking the email channel and any optional channels down with it.
func (hs *Subscriptions) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	hs.toggle(w, r, hs.store.Unsubscribe)
}

// SubscribeToEmail turns the subscription's email channel on.
// A subscription whose default channel is off responds 422.
func (hs *Subscriptions) SubscribeToEmail(w http.ResponseWriter, r *http.Request) {
	hs.toggle(w, r, hs.store.SubscribeToEmail)
}

// UnsubscribeToEmail turns the subscription's email channel off.
func (hs *Subscriptions) UnsubscribeToEmail(w http.ResponseWriter, r *http.Request) {
	hs.toggle(w, r, hs.store.UnsubscribeToEmail)
}

// SubscribeToOptionalTarget turns on the optional channel named by the
// subscribed_to_optional_target query param, required here and in
// UnsubscribeToOptionalTarget. A subscription whose default channel is off
// responds 422.
func (hs *Subscriptions) SubscribeToOptionalTarget(w http.ResponseWriter, r *http.Request) {
	hs.toggleOptionalTarget(w, r, hs.store.SubscribeToOptionalTarget)
}

// UnsubscribeToOptionalTarget turns off the optional channel named by the
// subscribed_to_optional_target query param.
func (hs *Subscriptions) UnsubscribeToOptionalTarget(w http.ResponseWriter, r *http.Request) {
	hs.toggleOptionalTarget(w, r, hs.store.UnsubscribeToOptionalTarget)
}

func (hs *Subscriptions) toggle(w http.ResponseWriter, r *http.Request, op func(*an.Subscription, time.Time) error) {
	s, err := hs.find(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	if err := op(&s, time.Now()); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Data(s))
}

func (hs *Subscriptions) toggleOptionalTarget(
	w http.ResponseWriter,
	r *http.Request,
	op func(*an.Subscription, string, time.Time) error,
) {
	s, err := hs.find(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	name := r.URL.Query().Get("subscribed_to_optional_target")
	if name == "" {
		respondErr(hs.d, w, r, fmt.Errorf("%w: subscribed_to_optional_target param", an.ErrMissingData))
		return
	}

	if err := op(&s, name, time.Now()); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Data(s))
}

func (hs *Subscriptions) find(r *http.Request) (an.Subscription, error) {
	targetType, targetID, err := target(r)
	if err != nil {
		return an.Subscription{}, err
	}

	id, err := resourceID(r)
	if err != nil {
		return an.Subscription{}, err
	}

	return hs.store.Find(targetType, targetID, id)
}
