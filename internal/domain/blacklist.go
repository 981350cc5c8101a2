package domain

import "time"

type BlacklistEntry struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
