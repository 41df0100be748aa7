package entity

import (
	"time"
)

type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleProvider
}

type User struct {
	ID           string `json:"id" firestore:"id" bson:"_id"`
	Name         string `json:"name" firestore:"name" bson:"name"`
	Email        string `json:"email" firestore:"email" bson:"email"`
	PasswordHash string `json:"-" firestore:"passwordHash" bson:"passwordHash"`
	Role         Role   `json:"role" firestore:"role" bson:"role"`
	Phone        string `json:"phone,omitempty" firestore:"phone" bson:"phone"`
	Location     string `json:"location,omitempty" firestore:"location" bson:"location"`

	// Client profile
	Company string `json:"company,omitempty" firestore:"company" bson:"company"`

	// Provider profile
	Skill      string `json:"skill,omitempty" firestore:"skill" bson:"skill"`
	Experience int    `json:"experience,omitempty" firestore:"experience" bson:"experience"`

	AvatarURL    string `json:"avatar_url" firestore:"avatarUrl" bson:"avatarUrl"`
	AvatarObject string `json:"-" firestore:"avatarObject" bson:"avatarObject"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the public slice of a user embedded in other records.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
