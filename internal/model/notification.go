package model

import "time"

// NotificationPriority is distinct from Priority: "none" is not a valid value.
type NotificationPriority string

const (
	NotificationLow    NotificationPriority = "low"
	NotificationMedium NotificationPriority = "medium"
	NotificationHigh   NotificationPriority = "high"
)

func (p NotificationPriority) Valid() bool {
	return p == NotificationLow || p == NotificationMedium || p == NotificationHigh
}

// NotificationType drives the display icon only.
type NotificationType string

const (
	TypeCompliance NotificationType = "compliance"
	TypeDeadline   NotificationType = "deadline"
	TypeReminder   NotificationType = "reminder"
	TypeAlert      NotificationType = "alert"
	TypeInfo       NotificationType = "info"
)

// Notification is a time-stamped alert, optionally linked to a document.
//
// DocumentID is a weak lookup key: the referenced document may have been deleted,
// and readers must tolerate the miss. IsRead only ever moves from false to true.
type Notification struct {
	ID            string               `json:"id"`
	Type          NotificationType     `json:"type"`
	Category      string               `json:"category,omitempty"`
	Priority      NotificationPriority `json:"priority"`
	Title         string               `json:"title"`
	Message       string               `json:"message"`
	Timestamp     time.Time            `json:"timestamp"`
	DocumentID    *string              `json:"documentId"`
	DocumentTitle *string              `json:"documentTitle"`
	IsRead        bool                 `json:"isRead"`
}

// Clone returns a copy that shares no pointers with n.
func (n Notification) Clone() Notification {
	if n.DocumentID != nil {
		id := *n.DocumentID
		n.DocumentID = &id
	}
	if n.DocumentTitle != nil {
		t := *n.DocumentTitle
		n.DocumentTitle = &t
	}
	return n
}

// DefaultNotificationWindow separates current notifications from past ones.
const DefaultNotificationWindow = 72 * time.Hour

// IsCurrent reports whether n falls inside the window ending at now.
// A timestamp exactly at now-window is past.
func (n Notification) IsCurrent(now time.Time, window time.Duration) bool {
	return n.Timestamp.After(now.Add(-window))
}
