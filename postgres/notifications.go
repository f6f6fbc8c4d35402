package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	an "github.com/sergii/activity-notification"
)

// A NotificationQuery restricts which of a target's notifications an operation touches.
//
// TargetType and TargetID address the owning target and are always required.
// The zero value of every other field leaves its restriction off.
type NotificationQuery struct {
	TargetType string
	TargetID   uint

	// Filter keeps only opened or only unopened notifications.
	Filter an.NotificationFilter

	// FilteredByKey keeps notifications for one activity key, e.g. "comment.create".
	FilteredByKey string

	// FilteredByType keeps notifications whose activity happened on one kind of record.
	FilteredByType string

	// GroupType and GroupID keep notifications grouped under one record.
	GroupType string
	GroupID   uint

	// WithGroupMembers lists group members alongside the owners representing them.
	WithGroupMembers bool

	// Limit caps how many notifications List returns; zero means no cap.
	Limit int

	// Reverse lists oldest first instead of newest first.
	Reverse bool
}

func (q NotificationQuery) order() string {
	if q.Reverse {
		return "created_at ASC, id ASC"
	}

	return "created_at DESC, id DESC"
}

// A NotificationStore reads and mutates a target's notifications.
type NotificationStore struct {
	db *DB
}

// NewNotificationStore constructs a NotificationStore around db.
func NewNotificationStore(db *DB) *NotificationStore { return &NotificationStore{db: db} }

// List retrieves the notifications matching q, newest first unless q.Reverse.
//
// Group members collapse into their owners unless q.WithGroupMembers,
// so a target's index stays one row per conversation.
// No matches is not an error; List returns an empty slice.
func (store *NotificationStore) List(q NotificationQuery) ([]an.Notification, error) {
	dbx := store.scope(q)
	if q.Limit > 0 {
		dbx = dbx.Limit(q.Limit)
	}

	var ns []an.Notification
	if err := dbx.Find(&ns); err != nil && !errors.Is(err, an.ErrNotFound) {
		return nil, err
	}

	return ns, nil
}

// Paged retrieves the page of notifications matching q along with pagination metadata.
func (store *NotificationStore) Paged(q NotificationQuery, page, perPage int64) (PagedData, error) {
	return store.scope(q).Model(new(an.Notification)).Paged(page, perPage)
}

// Find retrieves the notification with id belonging to the addressed target.
//
// Addressing another target's notification returns ErrNotFound,
// the same as addressing one that never existed.
func (store *NotificationStore) Find(targetType string, targetID, id uint) (an.Notification, error) {
	var n an.Notification
	err := store.db.
		Where("id = ?", id).
		Where("target_type = ?", targetType).
		Where("target_id = ?", targetID).
		First(&n)

	return n, err
}

// Open marks n opened at the given time, along with any group members
// collapsed under it that are still unopened.
//
// Opening an already opened notification is a no-op.
// A zero at opens at the current time.
func (store *NotificationStore) Open(n *an.Notification, at time.Time) error {
	if n == nil || n.ID == 0 {
		return fmt.Errorf("%w: notification has no ID", an.ErrMissingData)
	}

	if n.Opened() {
		return nil
	}

	if at.IsZero() {
		at = time.Now()
	}

	group := store.db.Where("id = ?", n.ID).Or("group_owner_id = ?", n.ID)
	err := store.db.
		Model(new(an.Notification)).
		Where(group).
		Where("opened_at IS NULL").
		Update(Updates{"opened_at": at})
	// NOTE: a concurrent open can leave no rows to update; that is still opened.
	if err != nil && !errors.Is(err, an.ErrNotFound) {
		return err
	}

	n.OpenedAt = sql.NullTime{Time: at, Valid: true}

	return nil
}

// OpenAll marks every unopened notification matching q opened at the given time,
// honoring q.FilteredByKey and q.FilteredByType, and returns how many it opened.
//
// A zero at opens at the current time.
func (store *NotificationStore) OpenAll(q NotificationQuery, at time.Time) (int64, error) {
	if at.IsZero() {
		at = time.Now()
	}

	scope := func() *DB {
		dbx := store.db.
			Model(new(an.Notification)).
			Where("target_type = ?", q.TargetType).
			Where("target_id = ?", q.TargetID).
			Where("opened_at IS NULL")
		if q.FilteredByKey != "" {
			dbx = dbx.Where("key = ?", q.FilteredByKey)
		}
		if q.FilteredByType != "" {
			dbx = dbx.Where("notifiable_type = ?", q.FilteredByType)
		}

		return dbx
	}

	count, err := scope().Count()
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, nil
	}

	if err := scope().Update(Updates{"opened_at": at}); err != nil && !errors.Is(err, an.ErrNotFound) {
		return 0, err
	}

	return count, nil
}

// Destroy archives the notification.
//
// Group members referencing it as their owner keep the reference;
// they stay collapsed out of owner-only listings like the original records they are.
func (store *NotificationStore) Destroy(n an.Notification) error {
	if n.ID == 0 {
		return fmt.Errorf("%w: notification has no ID", an.ErrMissingData)
	}

	return store.db.Delete(&n)
}

// UnopenedCount counts the unopened notifications representing groups for the target,
// i.e. the badge number a client renders next to a bell icon.
func (store *NotificationStore) UnopenedCount(targetType string, targetID uint) (int64, error) {
	return store.db.
		Model(new(an.Notification)).
		Where("target_type = ?", targetType).
		Where("target_id = ?", targetID).
		Where("opened_at IS NULL").
		Where("group_owner_id IS NULL").
		Count()
}

func (store *NotificationStore) scope(q NotificationQuery) *DB {
	dbx := store.db.
		Where("target_type = ?", q.TargetType).
		Where("target_id = ?", q.TargetID)

	switch q.Filter {
	case an.FilterOpened:
		dbx = dbx.Where("opened_at IS NOT NULL")
	case an.FilterUnopened:
		dbx = dbx.Where("opened_at IS NULL")
	}

	if !q.WithGroupMembers {
		dbx = dbx.Where("group_owner_id IS NULL")
	}

	if q.FilteredByKey != "" {
		dbx = dbx.Where("key = ?", q.FilteredByKey)
	}

	if q.FilteredByType != "" {
		dbx = dbx.Where("notifiable_type = ?", q.FilteredByType)
	}

	if q.GroupType != "" {
		dbx = dbx.Where("group_type = ?", q.GroupType).Where("group_id = ?", q.GroupID)
	}

	return dbx.Order(q.order())
}
