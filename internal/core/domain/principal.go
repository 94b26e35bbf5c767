package domain

// PermissionKey names a single grantable capability (e.g. "doctors_index").
// Keys are compared for equality only.
type PermissionKey string

// Permission is a capability as the upstream API describes it.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
}

// Role groups the permissions granted to a principal.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Principal is the authenticated admin as returned by POST /login.
type Principal struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  *Role  `json:"role,omitempty"`
}

// FlattenPermissions returns the permission names granted through the
// principal's role. The result is never nil; a missing role yields an empty slice.
func FlattenPermissions(p *Principal) []PermissionKey {
	if p == nil || p.Role == nil {
		return []PermissionKey{}
	}
	keys := make([]PermissionKey, 0, len(p.Role.Permissions))
	for _, perm := range p.Role.Permissions {
		if perm.Name == "" {
			continue
		}
		keys = append(keys, PermissionKey(perm.Name))
	}
	return keys
}
