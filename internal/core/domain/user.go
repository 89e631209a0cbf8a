package domain

// User represents a registered user of the platform.
type User struct {
	UserID          string `json:"userID"` // Primary Key (UUID)
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PasswordHash    string `json:"-"`
	IsStaff         bool   `json:"isStaff"` // staff users may settle movements and edit rates
	IsEmailVerified bool   `json:"isEmailVerified"`
	AuditFields
}

// MpesaNumber is the registered mobile-money phone number of one user.
// Deposits and withdrawals fall back to it when the request omits a phone.
type MpesaNumber struct {
	UserID      string `json:"userID"`
	PhoneNumber string `json:"phoneNumber"`
	IsVerified  bool   `json:"isVerified"`
	AuditFields
}
