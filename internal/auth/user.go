package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRole int

const (
	UserRoleAdmin UserRole = iota
	UserRoleExporter
	UserRoleViewer
)

var InsufficientPermissions = errors.New("Insufficient permissions to perform this action")

func (r UserRole) String() string {
	switch r {
	case UserRoleAdmin:
		return "admin"
	case UserRoleExporter:
		return "exporter"
	case UserRoleViewer:
		return "viewer"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func ParseUserRole(s string) (UserRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return UserRoleAdmin, nil
	case "exporter":
		return UserRoleExporter, nil
	case "viewer", "":
		return UserRoleViewer, nil
	}
	return UserRoleViewer, fmt.Errorf("Invalid user role: %s", s)
}

type User struct {
	Id       string
	Name     string
	Password []byte
	Role     UserRole
}

func NewUser(name, password string, role UserRole) (*User, error) {
	// password max size is 72 bytes because of bcrypt limit
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &User{uuid.New().String(), name, hashed, role}, nil
}

func (u *User) ValidateUser(password string) bool {
	return bcrypt.CompareHashAndPassword(u.Password, []byte(password)) == nil
}

// HasClearance reports whether u may act with role r. Lower roles carry more
// rights.
func (u *User) HasClearance(r UserRole) bool { return u != nil && u.Role <= r }

// Users is the set of accounts a server accepts. An empty set disables
// authentication and every caller acts as admin.
type Users []*User

func (users Users) Enabled() bool { return len(users) > 0 }

// Validate returns the user matching name and password, or nil.
func (users Users) Validate(name, password string) *User {
	if !users.Enabled() {
		return Anonymous
	}
	if len(name) == 0 {
		return nil
	}
	for _, u := range users {
		if u.Name == name && u.ValidateUser(password) {
			return u
		}
	}
	return nil
}

// Anonymous is used when authentication is disabled.
var Anonymous = &User{Id: "anonymous", Name: "anonymous", Role: UserRoleAdmin}
