package domain

import "time"

// Notification is an in-app message shown on a user's dashboard.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Metadata  map[string]any
	Read      bool
	CreatedAt time.Time
}
