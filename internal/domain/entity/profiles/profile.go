package profiles

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxFullNameLength = 120
	MaxURLLength      = 2048
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrMissingUser     = errors.New("profile user is required")
	ErrFullNameTooLong = fmt.Errorf("full name exceeds %d characters", MaxFullNameLength)
	ErrInvalidUsername = errors.New("username must be 3-32 letters, digits, dots, dashes or underscores")
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrInvalidURL      = errors.New("url must be an absolute http or https address")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)

// Profile is the public part of a user account. An unset field is the empty string.
type Profile struct {
	UserID    uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Website   string    `json:"website"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blank is what a user without a stored profile sees.
func Blank(userID uuid.UUID) Profile {
	return Profile{UserID: userID}
}

// Changes is a full replacement of the editable fields.
type Changes struct {
	FullName  string
	Username  string
	Website   string
	AvatarURL string
}

// Apply validates the changes and returns the profile of userID they describe.
func (c Changes) Apply(userID uuid.UUID, at time.Time) (Profile, error) {
	if userID == uuid.Nil {
		return Profile{}, ErrMissingUser
	}
	p := Profile{
		UserID:    userID,
		FullName:  strings.TrimSpace(c.FullName),
		Username:  strings.TrimSpace(c.Username),
		Website:   strings.TrimSpace(c.Website),
		AvatarURL: strings.TrimSpace(c.AvatarURL),
		UpdatedAt: at.UTC(),
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrMissingUser
	}
	if utf8.RuneCountInString(p.FullName) > MaxFullNameLength {
		return ErrFullNameTooLong
	}
	if p.Username != "" && !usernamePattern.MatchString(p.Username) {
		return ErrInvalidUsername
	}
	if err := validateURL(p.Website); err != nil {
		return fmt.Errorf("website: %w", err)
	}
	if err := validateURL(p.AvatarURL); err != nil {
		return fmt.Errorf("avatar_url: %w", err)
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > MaxURLLength {
		return ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}
