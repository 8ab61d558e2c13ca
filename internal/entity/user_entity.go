package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id          uuid.UUID
	GoogleId    string
	Email       string
	FullName    string
	AvatarURL   *string
	Status      UserStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
	GoogleToken *GoogleToken
}

// GoogleToken is the stored Google OAuth credential for a user. AccessToken
// and Expiry track the last issued token so the auth service can decide when
// a silent refresh is needed; RefreshToken is the long-lived credential.
type GoogleToken struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}
