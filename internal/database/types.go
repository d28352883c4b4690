package database

import (
	"time"
)

// Identity represents an enrolled person.
// Records are immutable after creation except for the verified flag, which is
// auxiliary status only: authentication is descriptor-driven, never flag-driven.
type Identity struct {
	ID          string    // internal record ID (uuid)
	IdentityKey string    // unique external-facing key (e.g. roll number)
	DisplayName string    // non-empty display name
	Descriptor  []float32 // facial descriptor, length == configured dim
	Verified    bool      // auxiliary status, defaults false
	CreatedAt   time.Time // set by the store on create
	UpdatedAt   time.Time // set by the store on create/modify
}
