package domain

import "time"

// OTPPurposeWithdrawal tags challenges that gate withdrawal confirmation.
const OTPPurposeWithdrawal = "withdrawal"

// OTPChallenge is a single-use numeric code bound 1:1 to one pending
// withdrawal movement. It expires a fixed duration after creation.
type OTPChallenge struct {
	OTPID      string    `json:"otpID"` // Primary Key (UUID)
	UserID     string    `json:"userID"`
	Code       string    `json:"-"` // 6 digits, never serialized
	Purpose    string    `json:"purpose"`
	MovementID string    `json:"movementID"`
	CreatedAt  time.Time `json:"createdAt"`
	IsUsed     bool      `json:"isUsed"`
}

// ExpiredAt reports whether the challenge is past its validity window at the
// given instant.
func (o OTPChallenge) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.After(o.CreatedAt.Add(ttl))
}
