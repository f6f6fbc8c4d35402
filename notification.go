package activitynotification

import (
	"database/sql"

	"gorm.io/datatypes"
)

// A Notification is a single message generated for a Target by application
// activity, such as another user commenting on the Target's article.
//
// Notifications are polymorphic on both ends: TargetType/TargetID address the
// receiving resource and NotifiableType/NotifiableID address the record the
// activity happened on. Key identifies the kind of activity, conventionally
// dot-separated, e.g. "comment.create".
//
// Notifications sharing a group collapse in index views: the newest is the
// group owner and the rest reference it through GroupOwnerID.
type Notification struct {
	Model
	TargetType     string            `db:"target_type" json:"targetType"`
	TargetID       uint              `db:"target_id" json:"targetId"`
	NotifiableType string            `db:"notifiable_type" json:"notifiableType"`
	NotifiableID   uint              `db:"notifiable_id" json:"notifiableId"`
	Key            string            `db:"key" json:"key"`
	GroupType      string            `db:"group_type" json:"groupType,omitempty"`
	GroupID        uint              `db:"group_id" json:"groupId,omitempty"`
	GroupOwnerID   *uint             `db:"group_owner_id" json:"groupOwnerId,omitempty"`
	NotifierType   string            `db:"notifier_type" json:"notifierType,omitempty"`
	NotifierID     uint              `db:"notifier_id" json:"notifierId,omitempty"`
	Parameters     datatypes.JSONMap `db:"parameters" json:"parameters,omitempty"`
	OpenedAt       sql.NullTime      `db:"opened_at" json:"openedAt"`
}

// Opened asserts whether the Notification has been opened by its Target.
func (n Notification) Opened() bool { return n.OpenedAt.Valid }

// GroupOwner asserts whether the Notification represents its group in index views.
// Ungrouped notifications are their own owner.
func (n Notification) GroupOwner() bool { return n.GroupOwnerID == nil }

// GroupMember asserts whether the Notification collapses into another
// notification's group.
func (n Notification) GroupMember() bool { return n.GroupOwnerID != nil }

// NotifiablePath returns the path to the notifiable record stored in
// Parameters, or "" when the generating activity recorded none.
func (n Notification) NotifiablePath() string {
	p, _ := n.Parameters["path"].(string)

	return p
}

// A NotificationFilter restricts index listings to a subset of notifications.
type NotificationFilter string

const (
	FilterAll      NotificationFilter = "all"
	FilterOpened   NotificationFilter = "opened"
	FilterUnopened NotificationFilter = "unopened"
)

// String stringifies the NotificationFilter.
//
// String implements Enumerable.
func (f NotificationFilter) String() string { return string(f) }

// Valid asserts the NotificationFilter is one of the enumerated values.
//
// Valid implements Enumerable.
func (f NotificationFilter) Valid() error {
	switch f {
	case FilterAll, FilterOpened, FilterUnopened:
		return nil
	default:
		return ErrNotValid
	}
}
