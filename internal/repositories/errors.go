package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned (wrapped) by every repository lookup that finds no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned (wrapped) when a write hits a unique constraint.
	ErrConflict = errors.New("record already exists")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate relies on gorm.Config.TranslateError being enabled.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
