package database

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the SQLite database and returns the handle for injection
// into the handlers. TranslateError is enabled so that unique-constraint
// violations surface as gorm.ErrDuplicatedKey: the allocation service relies
// on the store, not an application lock, to arbitrate races on code.
func Connect(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(withForeignKeys(path)), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// withForeignKeys ensures the _fk pragma is set on the DSN so the
// click_events cascade declared in the schema is enforced.
func withForeignKeys(path string) string {
	if strings.Contains(path, "_fk=") || strings.Contains(path, "_foreign_keys=") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&_fk=1"
	}
	return path + "?_fk=1"
}
