package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	user, err := NewUser("jonny", "jon@example.com", "$2a$04$digest", now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID != 0 {
		t.Errorf("Expected zero ID before storage, got %d", user.ID)
	}
	if user.Username != "jonny" {
		t.Errorf("Expected username %q, got %q", "jonny", user.Username)
	}
	if user.Email != "jon@example.com" {
		t.Errorf("Expected email %q, got %q", "jon@example.com", user.Email)
	}
	if !user.Active {
		t.Error("Expected new user to be active")
	}
	if !user.CreatedAt.Equal(now) || user.CreatedAt.Location() != time.UTC {
		t.Errorf("Expected CreatedAt %v in UTC, got %v", now, user.CreatedAt)
	}
}

func TestNewUserValidation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		username string
		email    string
		hash     string
		wantErr  error
	}{
		{"empty username", "", "jon@example.com", "digest", ErrEmptyUsername},
		{"blank username", "   ", "jon@example.com", "digest", ErrEmptyUsername},
		{"empty email", "jonny", "", "digest", ErrEmptyEmail},
		{"missing at", "jonny", "invalidemail", "digest", ErrInvalidEmail},
		{"missing local part", "jonny", "@example.com", "digest", ErrInvalidEmail},
		{"missing domain dot", "jonny", "jon@example", "digest", ErrInvalidEmail},
		{"trailing dot", "jonny", "jon@example.", "digest", ErrInvalidEmail},
		{"empty hash", "jonny", "jon@example.com", "", ErrEmptyHashedPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := NewUser(tt.username, tt.email, tt.hash, now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected error to wrap ErrValidation, got %v", err)
			}
			if user != nil {
				t.Errorf("Expected nil user, got %+v", user)
			}
		})
	}
}

func TestUserView(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	user := &User{
		ID:           7,
		Username:     "kristen",
		Email:        "kristen@test.com",
		PasswordHash: "$2a$04$secretdigest",
		Active:       true,
		CreatedAt:    created,
	}

	view := user.View()
	if view.ID != 7 || view.Username != "kristen" || view.Email != "kristen@test.com" {
		t.Errorf("Unexpected view %+v", view)
	}
	if !view.CreatedAt.Equal(created) {
		t.Errorf("Expected CreatedAt %v, got %v", created, view.CreatedAt)
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Contains(string(data), "password") || strings.Contains(string(data), "secretdigest") {
		t.Errorf("View JSON must not contain password data: %s", data)
	}

	data, err = json.Marshal(user)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Contains(string(data), "secretdigest") {
		t.Errorf("User JSON must not contain the password hash: %s", data)
	}
}

func TestViewsPreservesOrder(t *testing.T) {
	users := []*User{
		{ID: 1, Username: "a", Email: "a@example.com"},
		{ID: 2, Username: "b", Email: "b@example.com"},
		{ID: 3, Username: "c", Email: "c@example.com"},
	}

	views := Views(users)
	if len(views) != 3 {
		t.Fatalf("Expected 3 views, got %d", len(views))
	}
	for i, v := range views {
		if v.ID != users[i].ID {
			t.Errorf("Expected view %d to have ID %d, got %d", i, users[i].ID, v.ID)
		}
	}

	if got := Views(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

func TestValidateFieldHelpers(t *testing.T) {
	if err := ValidateUsername("jonny"); err != nil {
		t.Errorf("Expected valid username, got %v", err)
	}
	if err := ValidateUsername(" \t"); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("Expected ErrEmptyUsername, got %v", err)
	}
	if err := ValidateEmail("kristen@test.com"); err != nil {
		t.Errorf("Expected valid email, got %v", err)
	}
	if err := ValidateEmail("kristen@@test.com"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("Expected ErrInvalidEmail, got %v", err)
	}
	if err := ValidateEmail(""); !errors.Is(err, ErrEmptyEmail) {
		t.Errorf("Expected ErrEmptyEmail, got %v", err)
	}
}
