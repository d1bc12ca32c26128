package domain

import "time"

// FeatureTicketSystem gates ticket creation independently of role.
const FeatureTicketSystem = "ticket_system"

// Profile carries the account attributes synced from the identity
// provider. This service only reads it; the entitlement list is owned
// elsewhere.
type Profile struct {
	ID        string
	UserID    string
	Features  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFeature reports whether the profile carries the named entitlement.
// Safe to call on a nil profile.
func (p *Profile) HasFeature(name string) bool {
	if p == nil {
		return false
	}
	for _, feature := range p.Features {
		if feature == name {
			return true
		}
	}
	return false
}
