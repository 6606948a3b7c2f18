// Package store reads academic profiles and the college catalog.
package store

import "errors"

var (
	ErrProfileNotFound = errors.New("academic profile not found")
	ErrCollegeNotFound = errors.New("college not found")
)
