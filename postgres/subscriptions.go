package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	an "github.com/sergii/activity-notification"
)

// A SubscriptionQuery restricts which of a target's subscriptions an operation touches.
//
// TargetType and TargetID address the owning target and are always required.
type SubscriptionQuery struct {
	TargetType string
	TargetID   uint

	// FilteredByKey keeps the subscription for one activity key.
	FilteredByKey string

	// Limit caps how many subscriptions List returns; zero means no cap.
	Limit int

	// Reverse lists oldest first instead of newest first.
	Reverse bool
}

func (q SubscriptionQuery) order() string {
	if q.Reverse {
		return "created_at ASC, id ASC"
	}

	return "created_at DESC, id DESC"
}

// A SubscriptionStore reads and mutates a target's subscriptions.
//
// A subscription's email and optional channels ride on top of its default channel,
// so subscribing to a channel requires the subscription itself to be subscribing.
// Unsubscribing a channel carries no such requirement.
type SubscriptionStore struct {
	db *DB
}

// NewSubscriptionStore constructs a SubscriptionStore around db.
func NewSubscriptionStore(db *DB) *SubscriptionStore { return &SubscriptionStore{db: db} }

// List retrieves the subscriptions matching q, newest first unless q.Reverse.
//
// No matches is not an error; List returns an empty slice.
func (store *SubscriptionStore) List(q SubscriptionQuery) ([]an.Subscription, error) {
	dbx := store.db.
		Where("target_type = ?", q.TargetType).
		Where("target_id = ?", q.TargetID)

	if q.FilteredByKey != "" {
		dbx = dbx.Where("key = ?", q.FilteredByKey)
	}

	dbx = dbx.Order(q.order())
	if q.Limit > 0 {
		dbx = dbx.Limit(q.Limit)
	}

	var subs []an.Subscription
	if err := dbx.Find(&subs); err != nil && !errors.Is(err, an.ErrNotFound) {
		return nil, err
	}

	return subs, nil
}

// Find retrieves the subscription with id belonging to the addressed target.
//
// Addressing another target's subscription returns ErrNotFound,
// the same as addressing one that never existed.
func (store *SubscriptionStore) Find(targetType string, targetID, id uint) (an.Subscription, error) {
	var s an.Subscription
	err := store.db.
		Where("id = ?", id).
		Where("target_type = ?", targetType).
		Where("target_id = ?", targetID).
		First(&s)

	return s, err
}

// Create inserts the subscription, stamping its channel timestamps.
//
// A subscription without a key returns ErrMissingData.
// One subscribing to email while not subscribing at all returns ErrNotValid.
// A second subscription for the same target and key returns ErrExists.
func (store *SubscriptionStore) Create(s *an.Subscription) error {
	if s == nil || s.Key == "" {
		return fmt.Errorf("%w: subscription key", an.ErrMissingData)
	}

	if !s.Subscribing && s.SubscribingToEmail {
		return fmt.Errorf("%w: cannot subscribe to email while unsubscribed", an.ErrNotValid)
	}

	now := time.Now()
	if s.Subscribing && !s.SubscribedAt.Valid {
		s.SubscribedAt = sql.NullTime{Time: now, Valid: true}
	}
	if s.SubscribingToEmail && !s.SubscribedToEmailAt.Valid {
		s.SubscribedToEmailAt = sql.NullTime{Time: now, Valid: true}
	}

	return store.db.Create(s)
}

// Destroy archives the subscription, freeing its key for a later Create.
func (store *SubscriptionStore) Destroy(s an.Subscription) error {
	if s.ID == 0 {
		return fmt.Errorf("%w: subscription has no ID", an.ErrMissingData)
	}

	return store.db.Delete(&s)
}

// Subscribe turns the subscription's default channel on at the given time,
// bringing the email channel and any optional channels along with it.
//
// A zero at subscribes at the current time.
func (store *SubscriptionStore) Subscribe(s *an.Subscription, at time.Time) error {
	if err := persisted(s); err != nil {
		return err
	}

	if at.IsZero() {
		at = time.Now()
	}

	stamp := sql.NullTime{Time: at, Valid: true}
	s.Subscribing = true
	s.SubscribedAt = stamp
	s.SubscribingToEmail = true
	s.SubscribedToEmailAt = stamp
	for _, name := range s.OptionalTargetNames() {
		s.SetOptionalTarget(name, true, at)
	}

	updates := Updates{
		"subscribing":            true,
		"subscribed_at":          at,
		"subscribing_to_email":   true,
		"subscribed_to_email_at": at,
	}
	if len(s.OptionalTargets) > 0 {
		updates["optional_targets"] = s.OptionalTargets
	}

	return store.update(s.ID, updates)
}

// Unsubscribe turns the subscription's default channel off at the given time,
// taking the email channel and any optional channels down with it.
//
// A zero at unsubscribes at the current time.
func (store *SubscriptionStore) Unsubscribe(s *an.Subscription, at time.Time) error {
	if err := persisted(s); err != nil {
		return err
	}

	if at.IsZero() {
		at = time.Now()
	}

	stamp := sql.NullTime{Time: at, Valid: true}
	s.Subscribing = false
	s.UnsubscribedAt = stamp
	s.SubscribingToEmail = false
	s.UnsubscribedToEmailAt = stamp
	for _, name := range s.OptionalTargetNames() {
		s.SetOptionalTarget(name, false, at)
	}

	updates := Updates{
		"subscribing":              false,
		"unsubscribed_at":          at,
		"subscribing_to_email":     false,
		"unsubscribed_to_email_at": at,
	}
	if len(s.OptionalTargets) > 0 {
		updates["optional_targets"] = s.OptionalTargets
	}

	return store.update(s.ID, updates)
}

// SubscribeToEmail turns the subscription's email channel on at the given time.
//
// A subscription not subscribing at all returns ErrNotValid.
func (store *SubscriptionStore) SubscribeToEmail(s *an.Subscription, at time.Time) error {
	if err := persisted(s); err != nil {
		return err
	}

	if !s.Subscribing {
		return fmt.Errorf("%w: cannot subscribe to email while unsubscribed", an.ErrNotValid)
	}

	if at.IsZero() {
		at = time.Now()
	}

	s.SubscribingToEmail = true
	s.SubscribedToEmailAt = sql.NullTime{Time: at, Valid: true}

	return store.update(s.ID, Updates{
		"subscribing_to_email":   true,
		"subscribed_to_email_at": at,
	})
}

// UnsubscribeToEmail turns the subscription's email channel off at the given time.
func (store *SubscriptionStore) UnsubscribeToEmail(s *an.Subscription, at time.Time) error {
	if err := persisted(s); err != nil {
		return err
	}

	if at.IsZero() {
		at = time.Now()
	}

	s.SubscribingToEmail = false
	s.UnsubscribedToEmailAt = sql.NullTime{Time: at, Valid: true}

	return store.update(s.ID, Updates{
		"subscribing_to_email":     false,
		"unsubscribed_to_email_at": at,
	})
}

// SubscribeToOptionalTarget turns the named optional channel on at the given time.
//
// A subscription not subscribing at all returns ErrNotValid.
// An empty name returns ErrMissingData.
func (store *SubscriptionStore) SubscribeToOptionalTarget(s *an.Subscription, name string, at time.Time) error {
	if err := persisted(s); err != nil {
		return err
	}

	if name == "" {
		return fmt.Errorf("%w: optional target name", an.ErrMissingData)
	}

	if !s.Subscribing {
		return fmt.Errorf("%w: cannot subscribe to %q while unsubscribed", an.ErrNotValid, name)
	}

	if at.IsZero() {
		at = time.Now()
	}

	s.SetOptionalTarget(name, true, at)

	return store.update(s.ID, Updates{"optional_targets": s.OptionalTargets})
}

// UnsubscribeToOptionalTarget turns the named optional channel off at the given time.
//
// An empty name returns ErrMissingData.
func (store *SubscriptionStore) UnsubscribeToOptionalTarget(s *an.Subscription, name string, at time.Time) error {
	if err := persisted(s); err != nil {
		return err
	}

	if name == "" {
		return fmt.Errorf("%w: optional target name", an.ErrMissingData)
	}

	if at.IsZero() {
		at = time.Now()
	}

	s.SetOptionalTarget(name, false, at)

	return store.update(s.ID, Updates{"optional_targets": s.OptionalTargets})
}

func (store *SubscriptionStore) update(id uint, updates Updates) error {
	return store.db.Model(new(an.Subscription)).Where("id = ?", id).Update(updates)
}

func persisted(s *an.Subscription) error {
	if s == nil || s.ID == 0 {
		return fmt.Errorf("%w: subscription has no ID", an.ErrMissingData)
	}

	return nil
}
