package handlers

import (
	"net/http"
	"time"

	an "github.com/sergii/activity-notification"
	"github.com/sergii/activity-notification/http/req"
	"github.com/sergii/activity-notification/http/resp"
	"github.com/sergii/activity-notification/postgres"
)

// A NotificationStorer is the persistence a Notifications handler set
// reads and mutates. *postgres.NotificationStore implements it.
type NotificationStorer interface {
	List(q postgres.NotificationQuery) ([]an.Notification, error)
	Paged(q postgres.NotificationQuery, page, perPage int64) (postgres.PagedData, error)
	Find(targetType string, targetID, id uint) (an.Notification, error)
	Open(n *an.Notification, at time.Time) error
	OpenAll(q postgres.NotificationQuery, at time.Time) (int64, error)
	Destroy(n an.Notification) error
	UnopenedCount(targetType string, targetID uint) (int64, error)
}

// Notifications serves a target's notification routes,
// satisfying router.NotificationHandlers.
type Notifications struct {
	d      *resp.Responder
	parser *req.Parser
	store  NotificationStorer
}

// NewNotifications constructs the handler set notification declarations
// dispatch to.
func NewNotifications(d *resp.Responder, store NotificationStorer) *Notifications {
	return &Notifications{d: d, parser: req.NewParser(), store: store}
}

type notificationIndexParams struct {
	Filter           an.NotificationFilter `json:"filter" schema:"filter" validate:"omitempty,enum"`
	FilteredByKey    string                `json:"filteredByKey" schema:"filtered_by_key"`
	FilteredByType   string                `json:"filteredByType" schema:"filtered_by_type"`
	WithGroupMembers bool                  `json:"withGroupMembers" schema:"with_group_members"`
	Limit            int                   `json:"limit" schema:"limit" validate:"omitempty,gte=1"`
	Reverse          bool                  `json:"reverse" schema:"reverse"`
	Page             int64                 `json:"page" schema:"page" validate:"omitempty,gte=1"`
	PerPage          int64                 `json:"perPage" schema:"per_page" validate:"omitempty,gte=1"`
}

type notificationIndex struct {
	Count         int               `json:"count"`
	UnopenedCount int64             `json:"unopenedCount"`
	Notifications []an.Notification `json:"notifications"`
}

// Index lists the target's notifications, newest first,
// alongside the unopened count a client renders as a badge.
//
// Query params filter the listing: filter=opened|unopened,
// filtered_by_key, filtered_by_type, with_group_members, limit, reverse.
// Passing page (and optionally per_page) paginates instead.
func (hs *Notifications) Index(w http.ResponseWriter, r *http.Request) {
	targetType, targetID, err := target(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	var params notificationIndexParams
	if err := hs.parser.ParseQueryParams(r.URL.Query(), &params); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	q := postgres.NotificationQuery{
		TargetType:       targetType,
		TargetID:         targetID,
		Filter:           params.Filter,
		FilteredByKey:    params.FilteredByKey,
		FilteredByType:   params.FilteredByType,
		WithGroupMembers: params.WithGroupMembers,
		Limit:            params.Limit,
		Reverse:          params.Reverse,
	}

	if params.Page > 0 {
		perPage := params.PerPage
		if perPage == 0 {
			perPage = defaultPerPage
		}

		paged, err := hs.store.Paged(q, params.Page, perPage)
		if err != nil {
			respondErr(hs.d, w, r, err)
			return
		}

		hs.d.Json(w, r, resp.Data(paged))
		return
	}

	ns, err := hs.store.List(q)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	unopened, err := hs.store.UnopenedCount(targetType, targetID)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Data(notificationIndex{
		Count:         len(ns),
		UnopenedCount: unopened,
		Notifications: ns,
	}))
}

// Show responds with the addressed notification.
func (hs *Notifications) Show(w http.ResponseWriter, r *http.Request) {
	n, err := hs.find(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Data(n))
}

// Destroy archives the addressed notification and responds 204.
func (hs *Notifications) Destroy(w http.ResponseWriter, r *http.Request) {
	n, err := hs.find(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	if err := hs.store.Destroy(n); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type openAllParams struct {
	FilteredByKey  string `json:"filteredByKey" schema:"filtered_by_key"`
	FilteredByType string `json:"filteredByType" schema:"filtered_by_type"`
}

type openedCount struct {
	Count int64 `json:"count"`
}

// OpenAll marks every unopened notification of the target opened,
// honoring the filtered_by_key and filtered_by_type query params,
// and responds with how many it opened.
func (hs *Notifications) OpenAll(w http.ResponseWriter, r *http.Request) {
	targetType, targetID, err := target(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	var params openAllParams
	if err := hs.parser.ParseQueryParams(r.URL.Query(), &params); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	count, err := hs.store.OpenAll(postgres.NotificationQuery{
		TargetType:     targetType,
		TargetID:       targetID,
		FilteredByKey:  params.FilteredByKey,
		FilteredByType: params.FilteredByType,
	}, time.Now())
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	hs.d.Json(w, r, resp.Data(openedCount{Count: count}))
}

// Move opens the addressed notification and redirects to the path of the
// record the activity happened on. A notification whose generating activity
// recorded no path responds with the notification instead.
func (hs *Notifications) Move(w http.ResponseWriter, r *http.Request) {
	hs.open(w, r, true)
}

// Open marks the addressed notification opened and responds with it.
// Passing move=true redirects onward like Move.
func (hs *Notifications) Open(w http.ResponseWriter, r *http.Request) {
	hs.open(w, r, r.URL.Query().Get("move") == "true")
}

func (hs *Notifications) open(w http.ResponseWriter, r *http.Request, move bool) {
	n, err := hs.find(r)
	if err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	if err := hs.store.Open(&n, time.Now()); err != nil {
		respondErr(hs.d, w, r, err)
		return
	}

	if path := n.NotifiablePath(); move && path != "" {
		hs.d.Redirect(w, r, resp.Url(path))
		return
	}

	hs.d.Json(w, r, resp.Data(n))
}

func (hs *Notifications) find(r *http.Request) (an.Notification, error) {
	targetType, targetID, err := target(r)
	if err != nil {
		return an.Notification{}, err
	}

	id, err := resourceID(r)
	if err != nil {
		return an.Notification{}, err
	}

	return hs.store.Find(targetType, targetID, id)
}
