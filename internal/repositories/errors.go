package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConcurrentUpdate means a conditional write matched no row because
	// another writer got there first.
	ErrConcurrentUpdate = errors.New("record was modified concurrently")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
