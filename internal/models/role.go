package models

import (
	"fmt"
	"strings"
)

// Role is the side a user plays in the marketplace
type Role string

const (
	RoleFounder  Role = "founder"
	RoleInvestor Role = "investor"
)

// ParseRole converts role text into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleFounder:
		return RoleFounder, nil
	case RoleInvestor:
		return RoleInvestor, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// String returns the role text
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the two known roles
func (r Role) Valid() bool {
	return r == RoleFounder || r == RoleInvestor
}

// Looking returns the storage discriminant for the role.
// Founders are "looking" (for money), investors are not.
func (r Role) Looking() bool {
	return r == RoleFounder
}

// RoleFromLooking is the inverse of Role.Looking
func RoleFromLooking(looking bool) Role {
	if looking {
		return RoleFounder
	}
	return RoleInvestor
}
