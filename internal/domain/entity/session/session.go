package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
)

func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleStaff
}

func NewRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return r, nil
}

var ErrAnonymous = errors.New("session has no user")

// Session identifies the authenticated user of a request. It is passed explicitly to
// services instead of being read from ambient state.
type Session struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

func New(userID uuid.UUID, email string, role Role) (Session, error) {
	if userID == uuid.Nil {
		return Session{}, ErrAnonymous
	}
	if !role.IsValid() {
		return Session{}, fmt.Errorf("invalid role: %s", role)
	}
	return Session{UserID: userID, Email: strings.TrimSpace(email), Role: role}, nil
}

func (s Session) IsStaff() bool {
	return s.Role == RoleStaff
}

// CanAccess reports whether the session may read data owned by userID.
func (s Session) CanAccess(userID uuid.UUID) bool {
	if s.UserID == uuid.Nil {
		return false
	}
	return s.IsStaff() || s.UserID == userID
}
