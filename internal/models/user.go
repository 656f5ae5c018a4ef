package models

import "github.com/google/uuid"

// UserGender keys the fallback character-name table and the identity
// prompt wording. Unknown is a valid value, not an error.
type UserGender string

const (
	GenderFemale  UserGender = "female"
	GenderMale    UserGender = "male"
	GenderUnknown UserGender = "unknown"
)

// User is the caller identity the route layer resolves from the bearer
// token. The core never loads users itself.
type User struct {
	ID          uuid.UUID  `json:"id"`
	DisplayName string     `json:"displayName"`
	Gender      UserGender `json:"gender"`
	IsPremium   bool       `json:"isPremium"`
}
