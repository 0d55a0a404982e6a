// Package model defines domain entities for the application.
package model

import "time"

// Role values a user can hold.
const (
	RoleCustomer   = "customer"
	RoleValetStaff = "valet_staff"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is a registered account. Email is always stored lowercase.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	Role         string    `json:"role"`
	TenantID     *int64    `json:"tenant_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the subset of User returned to API clients.
type PublicUser struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"fullName"`
	Phone    *string `json:"phone"`
}

// ToPublic strips everything a client must not see.
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
	}
}
