package domain

import "time"

// Exercise is a single timed exercise entry owned by one user.
//
// Username is a denormalized copy taken from the owning user at creation
// time. It is never re-synced; with no rename operation the copy cannot
// drift, and it lets the log endpoint answer without a join.
type Exercise struct {
	ID          string
	UserID      string
	Username    string
	Description string
	Duration    int // whole minutes, >= 1
	Date        time.Time
	CreatedAt   time.Time
}

// LogFilter narrows an exercise log query. All fields are optional;
// From and To are inclusive and independent of each other.
type LogFilter struct {
	From  *time.Time
	To    *time.Time
	Limit *int
}

// Log is the assembled exercise log for one user.
type Log struct {
	UserID   string
	Username string
	Count    int
	Entries  []Exercise
}
