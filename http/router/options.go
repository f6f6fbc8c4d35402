package router

import (
	"maps"
	"slices"

	"github.com/sergii/activity-notification/http/middleware"
)

// An Action is the symbolic name of one route in a declared family.
type Action string

const (
	ActionIndex   Action = "index"
	ActionShow    Action = "show"
	ActionNew     Action = "new"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"

	ActionOpenAll Action = "open_all"
	ActionMove    Action = "move"
	ActionOpen    Action = "open"

	ActionSubscribe                   Action = "subscribe"
	ActionUnsubscribe                 Action = "unsubscribe"
	ActionSubscribeToEmail            Action = "subscribe_to_email"
	ActionUnsubscribeToEmail          Action = "unsubscribe_to_email"
	ActionSubscribeToOptionalTarget   Action = "subscribe_to_optional_target"
	ActionUnsubscribeToOptionalTarget Action = "unsubscribe_to_optional_target"
)

// Options configures a route family declaration.
//
// The zero value declares the family with its defaults.
// Unrecognized concerns ride through Defaults and Middlewares untouched.
type Options struct {
	// Model renames the declared sub-resource, e.g. "alerts" declares
	// /users/{user_id}/alerts instead of /users/{user_id}/notifications.
	Model string

	// Controller picks the registered handler set by name,
	// overriding the name the resolution would otherwise derive.
	Controller string

	// WithDevise names the target resource requests must authenticate as.
	// Leaving it empty declares the family without authentication.
	WithDevise string

	// WithSubscription cascades a subscription route family onto each
	// target declared for notifications, when the target supports it.
	WithSubscription bool

	// SubscriptionOptions configures the cascaded subscription family.
	// A non-nil value implies WithSubscription.
	SubscriptionOptions *Options

	// Except drops the named actions from the family's filtered routes.
	Except []Action

	// Only keeps just the named actions among the family's filtered routes.
	// Except wins when both name the same action.
	Only []Action

	// Defaults is fixed route data every route in the family carries,
	// alongside the derived target_type and devise_type values.
	Defaults map[string]string

	// Middlewares are appended to every route in the family.
	Middlewares []middleware.Adapter
}

// A resourceKind fixes what a declaration entry point knows about its
// sub-resource before any caller configuration applies.
type resourceKind struct {
	model          string
	forcedExcludes []Action
	cascades       bool
}

var (
	notificationResources = resourceKind{
		model:          "notifications",
		forcedExcludes: []Action{ActionNew, ActionCreate, ActionEdit, ActionUpdate},
		cascades:       true,
	}

	subscriptionResources = resourceKind{
		model:          "subscriptions",
		forcedExcludes: []Action{ActionNew, ActionEdit, ActionUpdate},
	}
)

// resolvedOptions is the immutable value a declaration consumes.
type resolvedOptions struct {
	model        string
	controller   string
	deviseType   string
	except       []Action
	only         []Action
	defaults     map[string]string
	middlewares  []middleware.Adapter
	subscription *Options
}

// resolveOptions derives the resolvedOptions a declaration of kind consumes
// from caller-supplied opts.
//
// resolveOptions never mutates opts, so one Options value resolves
// identically across any number of declarations.
func resolveOptions(kind resourceKind, opts Options) resolvedOptions {
	ro := resolvedOptions{
		model:       kind.model,
		deviseType:  opts.WithDevise,
		only:        slices.Clone(opts.Only),
		defaults:    maps.Clone(opts.Defaults),
		middlewares: slices.Clone(opts.Middlewares),
	}

	if opts.Model != "" {
		ro.model = opts.Model
	}

	ro.controller = "activity_notification/" + ro.model
	if ro.deviseType != "" {
		ro.controller += "_with_devise"
	}
	if opts.Controller != "" {
		ro.controller = opts.Controller
	}

	ro.except = make([]Action, 0, len(opts.Except)+len(kind.forcedExcludes))
	ro.except = append(ro.except, opts.Except...)
	ro.except = append(ro.except, kind.forcedExcludes...)

	if kind.cascades && (opts.WithSubscription || opts.SubscriptionOptions != nil) {
		sub := new(Options)
		if opts.SubscriptionOptions != nil {
			*sub = *opts.SubscriptionOptions
		}

		sub.WithDevise = opts.WithDevise
		ro.subscription = sub
	}

	return ro
}

// skipAction decides whether a filtered action stays out of the declared family.
//
// An action named by except is skipped no matter what only says.
func skipAction(action Action, ro resolvedOptions) bool {
	if len(ro.except) > 0 && slices.Contains(ro.except, action) {
		return true
	}

	return len(ro.only) > 0 && !slices.Contains(ro.only, action)
}
