package entity

import (
	"time"
)

// User is the credential record. Username is the primary key and never
// changes; PasswordHash is a bcrypt hash and must not leave the core.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  time.Time
}

// Profile is the public subset of a user embedded in listings and messages.
type Profile struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UserDetail is the public view of a single user.
type UserDetail struct {
	Profile
	JoinAt      time.Time `json:"join_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

func (u *User) Profile() Profile {
	return Profile{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

func (u *User) Detail() UserDetail {
	return UserDetail{Profile: u.Profile(), JoinAt: u.JoinedAt, LastLoginAt: u.LastLoginAt}
}
