// Package repository is the data access layer. Sentinel errors let
// handlers and the error boundary distinguish failure classes without
// inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row. The error
// boundary maps it to 404.
var ErrNotFound = errors.New("resource not found")

// ErrEmailExists is returned on a duplicate user email.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL unique-constraint
// violation (error 1062).
func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
