package domain

import (
	"strings"
	"time"
)

// User represents a registered account of the identity service.
// It contains the account details and the password digest used for
// authentication. A User never leaves the service layer as-is; callers
// receive a UserView instead.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_date"`
}

// UserView is the outward-facing projection of a User.
// It deliberately has no password field.
type UserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_date"`
}

// NewUser creates a new active User with the given username, email and
// password digest. The ID is left zero; it is assigned by the store.
// Returns an error if validation fails.
//
// NOTE: passwordHash must already be the output of a password hasher.
func NewUser(username, email, passwordHash string, now time.Time) (*User, error) {
	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now.UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error wrapping ErrValidation if any field fails validation.
func (u *User) Validate() error {
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}

	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	if u.PasswordHash == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}

// ValidateUsername checks that a username is not blank.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	return nil
}

// ValidateEmail checks that an email is present and shaped local@domain.tld.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(email) {
		return ErrInvalidEmail
	}
	return nil
}

// View returns the outward projection of the user.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Views projects a slice of users, preserving order.
func Views(users []*User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email has a non-empty local part, an @, and a domain
// with a dot that is neither leading nor trailing.
func validateEmailFormat(email string) bool {
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 { // minimum would be "a.b"
		return false
	}

	if strings.ContainsRune(domainPart, '@') {
		return false
	}

	dotIndex := strings.IndexByte(domainPart, '.')
	if dotIndex <= 0 || strings.HasSuffix(domainPart, ".") {
		return false
	}

	return true
}
