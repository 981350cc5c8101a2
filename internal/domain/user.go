package domain

import "time"

type User struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	Name        string    `json:"name"`
	IsOrganizer bool      `json:"is_organizer"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAuthenticated reports whether the user was resolved from a valid identity.
func (u User) IsAuthenticated() bool {
	return u.ID != 0
}

// CanSubmitEvents reports whether the user may submit events.
func (u User) CanSubmitEvents() bool {
	return u.IsOrganizer || u.IsAdmin
}
