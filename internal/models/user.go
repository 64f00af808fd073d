package models

import (
	"time"

	"healthcare-dashboard/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account of any role.
type User struct {
	BaseModel
	Name          string      `gorm:"size:100;not null" json:"name"`
	Email         string      `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password      string      `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role          domain.Role `gorm:"size:20;default:'User';index" json:"role"`
	ContactNumber string      `gorm:"size:30" json:"contactNumber,omitempty"`
	Address       string      `gorm:"type:text" json:"address,omitempty"`
	ProfileImage  string      `gorm:"size:255" json:"profileImage,omitempty"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	ContactNumber string      `json:"contactNumber,omitempty"`
	Address       string      `json:"address,omitempty"`
	ProfileImage  string      `json:"profileImage,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Actor returns the identity used by the permission rules.
func (u *User) Actor() domain.Actor {
	return domain.Actor{ID: u.ID, Role: u.Role}
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		ContactNumber: u.ContactNumber,
		Address:       u.Address,
		ProfileImage:  u.ProfileImage,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
