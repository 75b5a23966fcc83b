package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when the entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key (email, company name) already exists
	ErrDuplicate = errors.New("duplicate")
)
