package activitynotification

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// A Subscription records a Target's intent to receive notifications for one
// activity key, with independent toggles for the default channel, the email
// channel and any named optional channels the host application configures.
type Subscription struct {
	Model
	TargetType            string            `db:"target_type" json:"targetType"`
	TargetID              uint              `db:"target_id" json:"targetId"`
	Key                   string            `db:"key" json:"key"`
	Subscribing           bool              `db:"subscribing" json:"subscribing"`
	SubscribingToEmail    bool              `db:"subscribing_to_email" json:"subscribingToEmail"`
	SubscribedAt          sql.NullTime      `db:"subscribed_at" json:"subscribedAt"`
	UnsubscribedAt        sql.NullTime      `db:"unsubscribed_at" json:"unsubscribedAt"`
	SubscribedToEmailAt   sql.NullTime      `db:"subscribed_to_email_at" json:"subscribedToEmailAt"`
	UnsubscribedToEmailAt sql.NullTime      `db:"unsubscribed_to_email_at" json:"unsubscribedToEmailAt"`
	OptionalTargets       datatypes.JSONMap `db:"optional_targets" json:"optionalTargets,omitempty"`
}

// SubscribingToOptionalTarget asserts whether the named optional channel is
// subscribed to. Channels never toggled follow the default channel.
func (s Subscription) SubscribingToOptionalTarget(name string) bool {
	v, ok := s.OptionalTargets[optionalTargetKey(name)].(bool)
	if !ok {
		return s.Subscribing
	}

	return v
}

// OptionalTargetNames lists, in lexical order, the optional channels the
// Subscription has toggled at least once.
func (s Subscription) OptionalTargetNames() []string {
	var names []string
	for k := range s.OptionalTargets {
		if strings.HasPrefix(k, "subscribing_to_") {
			names = append(names, strings.TrimPrefix(k, "subscribing_to_"))
		}
	}
	sort.Strings(names)

	return names
}

// SetOptionalTarget records a toggle of the named optional channel at the
// given time, initializing the channel map when absent.
func (s *Subscription) SetOptionalTarget(name string, subscribing bool, at time.Time) {
	if s.OptionalTargets == nil {
		s.OptionalTargets = make(datatypes.JSONMap)
	}

	s.OptionalTargets[optionalTargetKey(name)] = subscribing
	if subscribing {
		s.OptionalTargets[optionalTargetSubscribedAtKey(name)] = at.Format(time.RFC3339)
		return
	}

	s.OptionalTargets[optionalTargetUnsubscribedAtKey(name)] = at.Format(time.RFC3339)
}

func optionalTargetKey(name string) string { return "subscribing_to_" + name }

func optionalTargetSubscribedAtKey(name string) string { return "subscribed_to_" + name + "_at" }

func optionalTargetUnsubscribedAtKey(name string) string { return "unsubscribed_to_" + name + "_at" }
