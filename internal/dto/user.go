package dto

import (
	"encoding/json"
	"time"

	"github.com/penpal-app/penpal-api/internal/models"
)

// ProfileDTO represents a user profile in API responses
type ProfileDTO struct {
	Avatar      string          `json:"avatar"`
	Bio         string          `json:"bio"`
	Preferences json.RawMessage `json:"preferences"`
	Timezone    string          `json:"timezone"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	CreatedAt time.Time   `json:"created_at"`
	Profile   *ProfileDTO `json:"profile,omitempty"`
}

// AuthorDTO represents a document or comment author (minimal data)
type AuthorDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ToProfileDTO converts a Profile model to ProfileDTO
func ToProfileDTO(profile models.Profile) ProfileDTO {
	prefs := json.RawMessage(profile.Preferences)
	if len(prefs) == 0 {
		prefs = json.RawMessage(`{}`)
	}
	return ProfileDTO{
		Avatar:      profile.Avatar,
		Bio:         profile.Bio,
		Preferences: prefs,
		Timezone:    profile.Timezone,
	}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
	if user.Profile != nil {
		profile := ToProfileDTO(*user.Profile)
		dto.Profile = &profile
	}
	return dto
}

// ToAuthorDTO converts a User model to AuthorDTO
func ToAuthorDTO(user models.User) AuthorDTO {
	return AuthorDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}
