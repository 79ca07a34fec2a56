package entity

import (
	"time"
)

type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// OTP is the single active one-time code for an (email, purpose) pair.
// Issuing a new code replaces any prior row for the pair.
type OTP struct {
	BaseSimple
	Email          string     `db:"email"`
	Code           string     `db:"otp_code"`
	Purpose        OTPPurpose `db:"purpose"`
	ExpiresAt      time.Time  `db:"expires_at"`
	FailedAttempts int        `db:"failed_attempts"`
	MaxAttempts    int        `db:"max_attempts"`
	LockedUntil    *time.Time `db:"locked_until"`
}

func (o *OTP) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

func (o *OTP) Locked(now time.Time) bool {
	return o.LockedUntil != nil && o.LockedUntil.After(now)
}

// LockRemaining returns minutes left in the lockout window, rounded up.
func (o *OTP) LockRemaining(now time.Time) int {
	if !o.Locked(now) {
		return 0
	}
	return int(o.LockedUntil.Sub(now).Minutes()) + 1
}
