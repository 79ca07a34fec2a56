package entity

import "time"

// RevokedToken is an append-only blacklist entry. Rows are swept once
// older than the configured retention window.
type RevokedToken struct {
	Token     string    `db:"token"`
	RevokedAt time.Time `db:"revoked_at"`
}
