package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	AdvertiserID *uuid.UUID `json:"advertiser_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// FillNameFromContact sets the user's name from an advertiser contact
// string when no first name is known yet. A two-word contact is split
// into first and last name; anything else becomes the first name.
func (u *User) FillNameFromContact(contact string) bool {
	if u.FirstName != "" {
		return false
	}
	parts := splitWords(contact)
	if len(parts) == 2 {
		u.FirstName, u.LastName = parts[0], parts[1]
	} else {
		u.FirstName = contact
	}
	return true
}
