package domain

// NotificationKind mirrors the toast styles of the dashboard.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
	NotifyWarning NotificationKind = "warning"
)

// Notification is a message queued for the next page the browser renders.
type Notification struct {
	Kind    NotificationKind `json:"type"`
	Title   string           `json:"title,omitempty"`
	Message string           `json:"message"`
}
