package router

import "strings"

// irregulars maps plural resource names whose singular form
// no suffix rule produces.
var irregulars = map[string]string{
	"children": "child",
	"feet":     "foot",
	"geese":    "goose",
	"men":      "man",
	"mice":     "mouse",
	"movies":   "movie",
	"oxen":     "ox",
	"people":   "person",
	"quizzes":  "quiz",
	"teeth":    "tooth",
	"women":    "woman",
}

// uncountables are resource names spelled the same in both numbers.
var uncountables = map[string]struct{}{
	"deer":    {},
	"fish":    {},
	"news":    {},
	"series":  {},
	"sheep":   {},
	"species": {},
}

// singularize derives the singular form of a plural resource name.
//
// Irregular and uncountable names come from lookup tables,
// everything else from suffix rules. A name no rule recognizes
// passes through unchanged.
func singularize(plural string) string {
	if _, ok := uncountables[plural]; ok {
		return plural
	}

	if singular, ok := irregulars[plural]; ok {
		return singular
	}

	switch {
	case strings.HasSuffix(plural, "ies") && len(plural) > 4:
		return strings.TrimSuffix(plural, "ies") + "y"
	case strings.HasSuffix(plural, "ses"),
		strings.HasSuffix(plural, "xes"),
		strings.HasSuffix(plural, "zes"),
		strings.HasSuffix(plural, "ches"),
		strings.HasSuffix(plural, "shes"):
		return strings.TrimSuffix(plural, "es")
	case strings.HasSuffix(plural, "s") && !strings.HasSuffix(plural, "ss"):
		return strings.TrimSuffix(plural, "s")
	}

	return plural
}

// normalizeResource lowers a caller-supplied resource name into
// the underscored form URL paths and route data carry,
// e.g. "Admin Users" becomes "admin_users".
func normalizeResource(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "-", "_")

	return strings.ReplaceAll(name, " ", "_")
}

// TargetParam names the URL path parameter holding the addressed target's ID
// for routes declared under the named target resource,
// e.g. "user_id" for routes declared under "users".
//
// Handlers read the parameter out of the matched route's variables.
func TargetParam(targetType string) string {
	return singularize(normalizeResource(targetType)) + "_id"
}

// routeName composes the name a declared route registers under,
// e.g. "user_notifications" for a collection route under "users"
// and "open_user_notification" for the open action on one of them.
func routeName(action Action, targetSingular, model string, member bool) string {
	name := targetSingular + "_" + model
	if member {
		name = targetSingular + "_" + singularize(model)
	}

	switch action {
	case ActionIndex, ActionShow:
		return name
	default:
		return string(action) + "_" + name
	}
}
