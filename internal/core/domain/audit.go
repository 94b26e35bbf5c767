package domain

import "time"

// AuditKind classifies audit trail entries.
type AuditKind string

const (
	AuditLoginSucceeded     AuditKind = "login_succeeded"
	AuditLoginFailed        AuditKind = "login_failed"
	AuditLogout             AuditKind = "logout"
	AuditAccessDenied       AuditKind = "access_denied"
	AuditSessionInvalidated AuditKind = "session_invalidated"
	AuditPasswordReset      AuditKind = "password_reset"
)

// AuditEvent records a security-relevant decision taken for a browser.
type AuditEvent struct {
	SessionID string    `json:"session_id" bson:"session_id"`
	Kind      AuditKind `json:"kind" bson:"kind"`
	UserID    int64     `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Path      string    `json:"path,omitempty" bson:"path,omitempty"`
	Detail    string    `json:"detail,omitempty" bson:"detail,omitempty"`
	At        time.Time `json:"at" bson:"at"`
}
