package models

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

type AuthUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type AuthResponse struct {
	AccessToken string   `json:"accessToken"`
	TokenType   string   `json:"tokenType"`
	User        AuthUser `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.DisplayName == "" {
		return fmt.Errorf("display name cannot be empty")
	}
	if len(r.DisplayName) > 120 {
		return fmt.Errorf("display name must be 120 characters or less")
	}
	return ValidatePassword(r.Password)
}

// ValidatePassword applies the server's password rules locally
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(pw) > 100 {
		return fmt.Errorf("password must be 100 characters or less")
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !lower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digit {
		return fmt.Errorf("password must contain at least one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// DefaultDemoName derives a display name from the local part of an email
func DefaultDemoName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
