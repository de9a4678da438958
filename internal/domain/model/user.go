package model

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleIntern = "intern"
)

type User struct {
	ID             string    `json:"id"`
	UserName       string    `json:"userName"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Profile is the public shape the auth endpoints echo: the identity fields
// and nothing else.
type Profile struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (u *User) Profile() *Profile {
	if u == nil {
		return nil
	}
	return &Profile{ID: u.ID, UserName: u.UserName, Email: u.Email, Role: u.Role}
}

// UserRef is the public profile shape embedded in project and task
// responses in place of a bare user id.
type UserRef struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email,omitempty"`
}

func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, UserName: u.UserName, Email: u.Email}
}
