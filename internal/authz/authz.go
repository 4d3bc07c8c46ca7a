// Package authz maps an authenticated identity to permitted operations.
// Credential verification itself (password check, token decode) happens
// elsewhere; this package only decides what a verified identity may do.
package authz

import (
	"errors"
	"fmt"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
)

// ErrForbidden is returned when an identity lacks the required role or
// does not own the targeted resource.
var ErrForbidden = errors.New("forbidden")

// Identity is a verified account, as extracted from a validated token.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}

// Require checks that the identity carries the required role. Admins pass
// every role check.
func Require(id Identity, requiredRole string) error {
	if id.Role == model.RoleAdmin {
		return nil
	}
	if id.Role == requiredRole {
		return nil
	}
	return fmt.Errorf("%w: role %q required", ErrForbidden, requiredRole)
}

// RequireAdmin checks for the admin role.
func RequireAdmin(id Identity) error {
	if id.Role != model.RoleAdmin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

// RequireCustomer checks for the customer role. Admins do not pass: an
// admin account has no order history and cannot place orders.
func RequireCustomer(id Identity) error {
	if id.Role != model.RoleCustomer {
		return fmt.Errorf("%w: customer role required", ErrForbidden)
	}
	return nil
}

// CanViewOrder allows admins to read any order and customers only their own.
func CanViewOrder(id Identity, order *model.Order) error {
	if id.Role == model.RoleAdmin {
		return nil
	}
	if order.CustomerID == id.UserID {
		return nil
	}
	return fmt.Errorf("%w: not the owner of order %d", ErrForbidden, order.ID)
}
