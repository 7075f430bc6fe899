package domain

import "time"

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Roles        []Role
	RegisteredAt time.Time
	LastLogin    *time.Time
}

// Wagon is a registry record for a railway wagon. Only the fields the
// access-control subsystem needs are modelled here; the technical passport
// data lives with the registry collaborators.
type Wagon struct {
	ID             string
	Number         string
	ManufacturerID *string
	CreatorID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Manufacturer is a registry record for a wagon manufacturer.
type Manufacturer struct {
	ID        string
	Name      string
	Country   string
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}
