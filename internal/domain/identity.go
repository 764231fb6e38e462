package domain

import "time"

// Identity is the caller identity derived from a verified token.
// It is never built from raw client input; the request gate attaches it to
// the request context and downstream handlers read it from there only.
type Identity struct {
	Subject   string
	IsGuest   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}
