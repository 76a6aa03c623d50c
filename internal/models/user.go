package models

import "time"

type UserRole string

const (
	UserRoleProvider UserRole = "provider"
	UserRoleAdmin    UserRole = "admin"
)

// DefaultRole is assigned by the system at registration; it is never
// accepted from the registering caller.
const DefaultRole = UserRoleProvider

type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        UserRole
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProviderKind string

const (
	ProviderCredential ProviderKind = "credential"
	ProviderGoogle     ProviderKind = "google"
)

// Account is one authentication method bound to a user. Credential
// accounts carry a password hash; federated accounts leave it nil.
type Account struct {
	ID           string
	UserID       string
	Provider     ProviderKind
	PasswordHash *string
	CreatedAt    time.Time
}
