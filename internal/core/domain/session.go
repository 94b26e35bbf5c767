package domain

// Storage keys under which a browser's session is persisted.
const (
	KeyToken         = "token"
	KeyUser          = "user"
	KeyPermissions   = "permissions"
	KeyResetToken    = "reset_token"
	KeyLocale        = "locale"
	KeyNotifications = "notifications"
)

// AuthKeys are the keys removed when the session is torn down. The locale
// survives a logout.
var AuthKeys = []string{KeyToken, KeyUser, KeyPermissions, KeyResetToken}

// Session is a snapshot of one browser's authentication state.
//
// Token and ResetToken are independent: a reset-authorized session need not be
// logged in, and vice versa.
type Session struct {
	Token       string
	ResetToken  string
	User        *Principal
	Permissions map[PermissionKey]struct{}
	Locale      string
}

// IsLoggedIn reports whether a bearer token is held.
func (s Session) IsLoggedIn() bool { return s.Token != "" }

// IsResetAuthorized reports whether a reset-scoped token is held.
func (s Session) IsResetAuthorized() bool { return s.ResetToken != "" }

// HasPermission reports whether key was granted at login time.
func (s Session) HasPermission(key PermissionKey) bool {
	_, ok := s.Permissions[key]
	return ok
}

// PermissionSet builds the lookup set for a list of keys.
func PermissionSet(keys []PermissionKey) map[PermissionKey]struct{} {
	set := make(map[PermissionKey]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
