package domain

import "time"

// Role is the authorization role stored on an identity.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleDriver     Role = "driver"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// UserStatus is the self-reported presence of a user.
type UserStatus string

const (
	UserStatusAvailable UserStatus = "available"
	UserStatusBusy      UserStatus = "busy"
)

// User represents an identity in the system, regardless of role.
type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Status       UserStatus

	// One-time passcode state. OTP is empty when nothing is outstanding.
	OTP           string
	OTPExpiresAt  time.Time
	OTPLastSentAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// OTPOutstanding reports whether an unexpired OTP is stored at now.
func (u *User) OTPOutstanding(now time.Time) bool {
	return u.OTP != "" && now.Before(u.OTPExpiresAt)
}
