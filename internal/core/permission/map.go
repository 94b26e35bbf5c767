// Package permission defines which permission key gates which console page.
//
// The map says what could gate a route, not what a given admin holds: paths
// missing from it are open to any authenticated admin.
package permission

import "github.com/sanadcare/admin-console/internal/core/domain"

// Map resolves a page path to the permission key that protects it.
type Map interface {
	Lookup(path string) (domain.PermissionKey, bool)
}

// pagePermissions is the static page → permission table.
var pagePermissions = map[string]domain.PermissionKey{
	"/admins":      "admins_index",
	"/roles":       "roles_index",
	"/permissions": "permissions_index",

	"/doctors":        "doctors_index",
	"/specialities":   "specialities_index",
	"/exercises":      "exercises_index",
	"/follow-ups":     "follow-ups_index",
	"/recovery-plans": "recovery-plans_index",
	"/sliders":        "sliders_index",

	"/app-pages": "pages_index",
	"/faqs":      "faqs_index",

	"/locations/countries": "countries_index",
	"/locations/regions":   "regions_index",
	"/locations/cities":    "cities_index",
	"/locations/districts": "districts_index",

	"/bags":          "bags_index",
	"/packages":      "packages_index",
	"/nationalities": "nationalities_index",

	"/settings":     "settings-all_index",
	"/app-settings": "settings_index",
	"/contact-us":   "contact-us_index",

	// Shadowed by the always-accessible set; kept so the table lists every
	// permission the upstream defines for a page.
	"/my-account": "profile_show",

	"/auto-consultation": "auto-consultation_index",
	"/emojis":            "emojis_index",
}

// alwaysAccessible pages skip the map once the admin is logged in.
var alwaysAccessible = map[string]struct{}{
	domain.RouteHome:          {},
	domain.RouteMyAccount:     {},
	domain.RouteNotifications: {},
}

// Static is the console's built-in permission map.
type Static struct{}

// Default returns the built-in map.
func Default() Static { return Static{} }

// Lookup returns the permission protecting path, if any.
func (Static) Lookup(path string) (domain.PermissionKey, bool) {
	key, ok := pagePermissions[path]
	return key, ok
}

// AlwaysAccessible reports whether path is open to every logged-in admin.
func AlwaysAccessible(path string) bool {
	_, ok := alwaysAccessible[path]
	return ok
}

// Paths lists every gated page path.
func Paths() []string {
	paths := make([]string, 0, len(pagePermissions))
	for p := range pagePermissions {
		paths = append(paths, p)
	}
	return paths
}
