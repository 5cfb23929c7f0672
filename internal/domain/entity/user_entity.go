package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the user records domain.
// Email is unique across all users and always stored lowercased.
type User struct {
	ID        string
	Name      string
	Email     string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims name, email and image URL and lowercases the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	u.ImageURL = strings.TrimSpace(u.ImageURL)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
