package domain

import (
	"time"
)

// Profile represents a registered user.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this via JSON
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfilePatch lists the profile fields a user can change.
type ProfilePatch struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Username  *string `json:"username,omitempty" validate:"omitempty,alphanum,min=3,max=40"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
}

func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Username == nil && p.AvatarURL == nil && p.Bio == nil
}
