package activitynotification

// A Target is the parent entity notifications and subscriptions nest under,
// most often a user-like resource in the host application.
//
// ResourceName returns the plural, underscored name of the resource,
// e.g. "users" or "admin_users".
// The name scopes the URL paths of every route family declared for the Target
// and is carried on those routes as the "target_type" route data.
type Target interface {
	ResourceName() string
}

// A SubscriptionSupporter is a Target that can manage subscriptions.
//
// Declaring notification routes with subscription cascading only declares
// subscription routes for Targets implementing SubscriptionSupporter
// with SubscriptionEnabled returning true.
type SubscriptionSupporter interface {
	SubscriptionEnabled() bool
}

// A Resource is a bare Target with no capabilities beyond its name.
type Resource string

// ResourceName returns the resource name.
//
// ResourceName implements Target.
func (r Resource) ResourceName() string { return string(r) }

// A SubscribableResource is a Target that always supports subscriptions.
type SubscribableResource string

// ResourceName returns the resource name.
//
// ResourceName implements Target.
func (r SubscribableResource) ResourceName() string { return string(r) }

// SubscriptionEnabled implements SubscriptionSupporter.
func (r SubscribableResource) SubscriptionEnabled() bool { return true }

// TargetSupportsSubscription queries the subscription capability of t.
// Targets not implementing SubscriptionSupporter do not support subscriptions.
func TargetSupportsSubscription(t Target) bool {
	s, ok := t.(SubscriptionSupporter)

	return ok && s.SubscriptionEnabled()
}
