package domain

import "time"

// User is a registered account that exercise entries are logged against.
// Users are created once and never renamed or deleted.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
