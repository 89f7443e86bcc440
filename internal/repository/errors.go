// Package repository implements the storage layer: the lesson aggregate,
// the four recurrence stores, permission grants, accounts and refresh
// tokens, and date-driven schedule resolution.  Lookups that find nothing
// return sql.ErrNoRows; the sentinel values below cover the remaining
// failure cases handlers need to tell apart.
package repository

import "errors"

// ErrEmailExists is returned by AccountRepo.Create when the email is
// already registered.  Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
