package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"riego/internal/types"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	USERNAME_MIN_LENGTH = 3
	PASSWORD_MIN_LENGTH = 8
)

type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:text;not null"                     json:"-"`
	IsActive     bool       `gorm:"type:bool;not null"                     json:"isActive"`
	LastLoginAt  *time.Time `gorm:"type:timestamp"                         json:"lastLoginAt,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Username == "" || u.Email == "" || u.PasswordHash == "" {
		return gorm.ErrInvalidValue
	}
	return nil
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) MarkLogin(now time.Time) {
	u.LastLoginAt = &now
}

// ValidatePasswordPair checks a password and its confirmation.
func ValidatePasswordPair(password, confirmation string) *types.ValidationError {
	verr := types.NewValidationError()
	if utf8.RuneCountInString(password) < PASSWORD_MIN_LENGTH {
		verr.Add("password", "La contraseña debe tener al menos 8 caracteres.")
	}
	if password != confirmation {
		verr.Add("password", "Las contraseñas no coinciden")
	}
	return verr
}

type UserProfile struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
}

func ValidateUsername(username string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(username)) >= USERNAME_MIN_LENGTH
}
