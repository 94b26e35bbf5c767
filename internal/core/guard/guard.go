// Package guard decides, for one navigation attempt, whether the target page
// may render or where the browser must go instead.
//
// Rules are applied in order and the first match wins:
//
//  1. auth-flow pages are public; a logged-in admin is sent home from
//     /login and /forgot, and /resetpassword additionally needs a reset token
//  2. everything else needs a login
//  3. always-accessible pages need nothing more
//  4. pages in the permission map need their permission
package guard

import (
	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/permission"
)

// Reason labels why a decision was taken. Used for logs and metrics.
type Reason string

const (
	ReasonPublic           Reason = "public"
	ReasonAlreadyLoggedIn  Reason = "already_logged_in"
	ReasonResetRequired    Reason = "reset_required"
	ReasonLoginRequired    Reason = "login_required"
	ReasonAlwaysAccessible Reason = "always_accessible"
	ReasonPermitted        Reason = "permitted"
	ReasonUnmapped         Reason = "unmapped"
	ReasonDenied           Reason = "denied"
)

// SessionView is the read side of the session the guard consults.
type SessionView interface {
	IsLoggedIn() bool
	IsResetAuthorized() bool
	HasPermission(key domain.PermissionKey) bool
}

// Decision is the guard's verdict for one navigation.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   Reason
	// Denied is set when a logged-in admin lacks Permission; the caller owes
	// the browser an access-denied notification.
	Denied     bool
	Permission domain.PermissionKey
}

var publicRoutes = map[string]struct{}{
	domain.RouteLogin:         {},
	domain.RouteForgot:        {},
	domain.RouteOTP:           {},
	domain.RouteResetPassword: {},
}

// IsPublic reports whether path belongs to the unauthenticated auth flow.
func IsPublic(path string) bool {
	_, ok := publicRoutes[path]
	return ok
}

// Evaluate runs the rules for target against the session.
func Evaluate(target string, s SessionView, pm permission.Map) Decision {
	if IsPublic(target) {
		if s.IsLoggedIn() && (target == domain.RouteLogin || target == domain.RouteForgot) {
			return redirect(domain.RouteHome, ReasonAlreadyLoggedIn)
		}
		if target == domain.RouteResetPassword && !s.IsResetAuthorized() {
			return redirect(domain.RouteForgot, ReasonResetRequired)
		}
		return allow(ReasonPublic)
	}

	if !s.IsLoggedIn() {
		return redirect(domain.RouteLogin, ReasonLoginRequired)
	}

	if permission.AlwaysAccessible(target) {
		return allow(ReasonAlwaysAccessible)
	}

	key, ok := pm.Lookup(target)
	if !ok {
		return allow(ReasonUnmapped)
	}
	if !s.HasPermission(key) {
		d := redirect(domain.RouteHome, ReasonDenied)
		d.Denied = true
		d.Permission = key
		return d
	}

	d := allow(ReasonPermitted)
	d.Permission = key
	return d
}

func allow(r Reason) Decision {
	return Decision{Allow: true, Reason: r}
}

func redirect(to string, r Reason) Decision {
	return Decision{Redirect: to, Reason: r}
}
