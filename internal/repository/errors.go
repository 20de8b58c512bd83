// Package repository implements persistence over MySQL.  This file
// defines sentinel error values reused across repositories so that
// handlers can translate failure scenarios into HTTP statuses without
// string matching.
package repository

import "errors"

// ErrUsernameExists is returned when an insert or update collides with
// an existing username.  Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert or update collides with an
// existing email address.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
