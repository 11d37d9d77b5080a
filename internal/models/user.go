package models

import (
	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RolePatient Role = "PATIENT"
)

// IsAdmin reports whether the role grants the admin views.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// UserProjection is the minimal user record kept alongside the session token.
type UserProjection struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Session is the authenticated context gating every booking operation.
type Session struct {
	Token string
	User  UserProjection
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name" binding:"required" validate:"required"`
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required,min=6" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Projection extracts the persisted user projection.
func (r AuthResponse) Projection() UserProjection {
	return UserProjection{
		UserID: r.UserID,
		Email:  r.Email,
		Name:   r.Name,
		Role:   r.Role,
	}
}

// UserRecord is a stub backend user row.
type UserRecord struct {
	BaseModel
	Email    string `gorm:"uniqueIndex;size:255;not null"`
	Password string `gorm:"size:255;not null"`
	Name     string `gorm:"size:100"`
	Phone    string `gorm:"size:32"`
	Role     Role   `gorm:"size:20;default:'PATIENT'"`
}

// SetPassword hashes a password and sets it on the user
func (u *UserRecord) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *UserRecord) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
