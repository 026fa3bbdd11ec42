// Package credstore implements the local credential store: a small
// persistent map from email to password plus a denormalized user profile.
// It exists so a freshly provisioned store admin can sign in immediately,
// whether or not a real backend account was created for them. Passwords
// are stored in plaintext; this store is never the system of record for
// real accounts.
package credstore

import (
	"strings"

	"github.com/google/uuid"
)

// Profile is the denormalized user profile attached to a credential entry
type Profile struct {
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	TenantID   uuid.UUID `json:"tenant_id"`
	TenantSlug string    `json:"tenant_slug"`
	TenantName string    `json:"tenant_name"`
	IsAdmin    bool      `json:"is_admin"`
}

// Entry is a single credential keyed by email
type Entry struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Profile  Profile `json:"profile"`
}

// Store is the credential store contract. There is a single owner per
// process; callers receive it by injection, never through a package-level
// singleton.
type Store interface {
	// Lookup returns the entry for the given email, if any. Emails are
	// matched case-insensitively.
	Lookup(email string) (*Entry, bool, error)
	// Upsert persists an entry, overwriting any existing one for the email
	Upsert(entry Entry) error
	// Clear wipes every persisted entry. Built-in seed credentials are not
	// persisted, so they survive a clear.
	Clear() error
	// List returns all usable entries, persisted merged over seeds
	List() ([]Entry, error)
}

// NormalizeEmail lowercases and trims an email for use as a store key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultSeeds returns the built-in demo credentials compiled into the
// binary. They are merged at read time and never written to disk.
func DefaultSeeds() []Entry {
	demoTenant := uuid.MustParse("6f1c0d6e-9a34-4a14-8d2a-1d24b7c90210")
	return []Entry{
		{
			Email:    "admin@demo.com",
			Password: "admin123",
			Profile: Profile{
				UserID:     uuid.MustParse("d0a7e1a2-55b3-4c70-9f0e-2b6a8c3d4e5f"),
				Name:       "Demo Admin",
				TenantID:   demoTenant,
				TenantSlug: "loja-demo",
				TenantName: "Loja Demo",
				IsAdmin:    true,
			},
		},
		{
			Email:    "vendedor@demo.com",
			Password: "vendedor123",
			Profile: Profile{
				UserID:     uuid.MustParse("7b2f9c81-3e6d-4f5a-b1c0-9d8e7f6a5b4c"),
				Name:       "Demo Seller",
				TenantID:   demoTenant,
				TenantSlug: "loja-demo",
				TenantName: "Loja Demo",
				IsAdmin:    false,
			},
		},
	}
}
