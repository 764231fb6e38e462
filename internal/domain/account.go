package domain

import "time"

// Account represents a registered credential record.
// The password is opaque to the core: it is stored and compared as given,
// never transformed.
type Account struct {
	ID        int64
	Username  string
	Password  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
